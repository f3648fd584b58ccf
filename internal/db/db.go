package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dessertbox/internal/config"
	applog "dessertbox/internal/log"
	"dessertbox/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Initialize opens a connection pool for the configured URL. postgres:// and
// postgresql:// URLs use the Postgres driver; file: and sqlite:// URLs open a
// SQLite database.
func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	dialector, err := dialectorFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return db, nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	trimmed := strings.TrimSpace(url)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgres.Open(trimmed), nil
	case strings.HasPrefix(lower, "sqlite://"):
		return sqlite.Open(trimmed[len("sqlite://"):]), nil
	case strings.HasPrefix(lower, "file:"):
		return sqlite.Open(trimmed), nil
	default:
		return nil, fmt.Errorf("unsupported database URL scheme: %q", trimmed)
	}
}

// AutoMigrate creates or updates the catalog, box and user tables.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}

	return db.AutoMigrate(
		&models.DessertType{},
		&models.Flavor{},
		&models.PackagingOption{},
		&models.DietaryOption{},
		&models.Theme{},
		&models.DessertBox{},
		&models.User{},
	)
}

// Configure opens, migrates and optionally seeds the database. The caller
// owns the returned handle and must Close it on shutdown.
func Configure(cfg config.DatabaseConfig) (*gorm.DB, error) {
	database, err := Initialize(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(database); err != nil {
		Close(database)
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if cfg.Seed {
		if err := SeedCatalog(context.Background(), database); err != nil {
			Close(database)
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	return database, nil
}

func MustConfigure(cfg config.DatabaseConfig) *gorm.DB {
	database, err := Configure(cfg)
	if err != nil {
		panic(err)
	}

	return database
}

// Close releases the underlying connection pool.
func Close(database *gorm.DB) {
	if database == nil {
		return
	}
	sqlDB, err := database.DB()
	if err != nil {
		applog.Error(context.Background(), "failed to access sql db for close", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		applog.Error(context.Background(), "failed to close database", "error", err)
	}
}

// Ping verifies the database is reachable.
func Ping(ctx context.Context, database *gorm.DB) error {
	if database == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
