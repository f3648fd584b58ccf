package db

import (
	"context"
	"testing"

	"dessertbox/internal/config"
	"dessertbox/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestInitializeRequiresURL(t *testing.T) {
	t.Parallel()

	db, err := Initialize(config.DatabaseConfig{URL: ""})
	if err == nil {
		t.Fatal("expected error when database URL is empty")
	}
	if db != nil {
		t.Fatal("expected returned db handle to be nil on error")
	}
}

func TestInitializeRejectsUnknownScheme(t *testing.T) {
	t.Parallel()

	if _, err := Initialize(config.DatabaseConfig{URL: "mysql://root@localhost/boxes"}); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestAutoMigrateRejectsNilDatabase(t *testing.T) {
	t.Parallel()

	if err := AutoMigrate(nil); err == nil {
		t.Fatal("expected error when database handle is nil")
	}
}

func TestAutoMigrateWithSQLite(t *testing.T) {
	t.Parallel()

	sqliteDB, err := gorm.Open(sqlite.Open("file:memdb?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}

	if err := AutoMigrate(sqliteDB); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}
}

func TestConfigureSeedsSQLiteCatalogOnce(t *testing.T) {
	t.Parallel()

	cfg := config.DatabaseConfig{URL: "file:seeddb?mode=memory&cache=shared", Seed: true}
	database, err := Configure(cfg)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	t.Cleanup(func() { Close(database) })

	if err := SeedCatalog(context.Background(), database); err != nil {
		t.Fatalf("second SeedCatalog() error = %v", err)
	}

	counts := []struct {
		model any
		want  int64
	}{
		{&models.DessertType{}, 4},
		{&models.Flavor{}, 7},
		{&models.PackagingOption{}, 5},
		{&models.DietaryOption{}, 5},
		{&models.Theme{}, 5},
	}
	for _, c := range counts {
		var got int64
		if err := database.Model(c.model).Count(&got).Error; err != nil {
			t.Fatalf("count %T: %v", c.model, err)
		}
		if got != c.want {
			t.Fatalf("count %T = %d, want %d", c.model, got, c.want)
		}
	}

	var brownies models.DessertType
	if err := database.Where("name = ?", "Brownies").First(&brownies).Error; err != nil {
		t.Fatalf("load brownies: %v", err)
	}
	if brownies.BasePrice.StringFixed(2) != "20.00" {
		t.Fatalf("Brownies base price = %s", brownies.BasePrice)
	}

	if err := Ping(context.Background(), database); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestConfigurePropagatesInitializationError(t *testing.T) {
	t.Parallel()

	if _, err := Configure(config.DatabaseConfig{}); err == nil {
		t.Fatal("expected configuration error when initialize fails")
	}
}

func TestMustConfigurePanicsOnError(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when configuration fails")
		}
	}()

	MustConfigure(config.DatabaseConfig{})
}

func TestPingWithoutDatabase(t *testing.T) {
	t.Parallel()

	if err := Ping(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil database")
	}
}
