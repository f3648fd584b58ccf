package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dessertbox/internal/catalog"
	"dessertbox/internal/config"
	"dessertbox/internal/db"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
)

func TestParseRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fields  []string
		want    priceRow
		wantErr string
	}{
		{
			name:   "flavor",
			fields: []string{"flavors", " Salted  Caramel ", "$2.255"},
			want:   priceRow{Category: pricing.CategoryFlavor, Name: "Salted Caramel"},
		},
		{
			name:   "description with commas",
			fields: []string{"packaging", "Tin", "6", "Metal tin, reusable", " embossed"},
			want:   priceRow{Category: pricing.CategoryPackaging, Name: "Tin", Description: "Metal tin, reusable, embossed"},
		},
		{name: "short", fields: []string{"themes", "Spooky"}, wantErr: "expected category,name,price"},
		{name: "unknown category", fields: []string{"sprinkles", "Rainbow", "1"}, wantErr: "unknown category"},
		{name: "bad price", fields: []string{"themes", "Spooky", "cheap"}, wantErr: "invalid price"},
		{name: "negative price", fields: []string{"themes", "Spooky", "-1"}, wantErr: "must not be negative"},
		{name: "empty name", fields: []string{"themes", "  ", "1"}, wantErr: "name must not be empty"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseRow(tt.fields)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRow returned error: %v", err)
			}
			if got.Category != tt.want.Category || got.Name != tt.want.Name || got.Description != tt.want.Description {
				t.Fatalf("parseRow = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePriceRoundsToCents(t *testing.T) {
	t.Parallel()

	price, err := parsePrice("$2.255")
	if err != nil {
		t.Fatalf("parsePrice returned error: %v", err)
	}
	if price.StringFixed(2) != "2.26" {
		t.Fatalf("expected 2.26, got %s", price.StringFixed(2))
	}
}

func TestReadSheetSkipsHeaderAndBlankLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prices.csv")
	content := "category,name,price,description\n" +
		"dessert-types,Eclairs,28,Choux pastry\n" +
		"\n" +
		"themes,Halloween,3.5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write sheet: %v", err)
	}

	rows, err := readSheet(path)
	if err != nil {
		t.Fatalf("readSheet returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Category != pricing.CategoryDessertType || rows[0].Description != "Choux pastry" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Price.StringFixed(2) != "3.50" {
		t.Fatalf("unexpected theme price %s", rows[1].Price.StringFixed(2))
	}
}

func TestParseSheetRejectsEmptySheet(t *testing.T) {
	t.Parallel()

	if _, err := parseSheet(strings.NewReader("category,name,price\n")); err == nil {
		t.Fatal("expected error for a sheet without rows")
	}
}

func TestReadSheetRejectsInvalidPDF(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prices.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o600); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	if _, err := readSheet(path); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func seededDatabase(t *testing.T, name string) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close(database) })
	if err := db.AutoMigrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SeedCatalog(context.Background(), database); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return database
}

func flavorPrices(t *testing.T, snapshot pricing.Catalog) map[string]string {
	t.Helper()

	prices := map[string]string{}
	for _, option := range snapshot.Flavors {
		prices[option.Name] = option.Price.StringFixed(2)
	}
	return prices
}

func TestImportRowsCreatesAndUpdates(t *testing.T) {
	database := seededDatabase(t, "import_catalog")
	ctx := context.Background()

	rows, err := parseSheet(strings.NewReader("flavors,Vanilla,0.75\nflavors,Pistachio,2.5\n"))
	if err != nil {
		t.Fatalf("parseSheet: %v", err)
	}
	catalogStore := store.NewCatalogStore(database)
	created, updated, err := importRows(ctx, catalogStore, rows)
	if err != nil {
		t.Fatalf("importRows: %v", err)
	}
	if created != 1 || updated != 1 {
		t.Fatalf("expected 1 created and 1 updated, got %d and %d", created, updated)
	}

	snapshot, err := catalogStore.Catalog(ctx)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	prices := flavorPrices(t, snapshot)
	if prices["Vanilla"] != "0.75" || prices["Pistachio"] != "2.50" {
		t.Fatalf("unexpected flavor prices %v", prices)
	}
}

func TestImportRowsClearsSharedSnapshot(t *testing.T) {
	database := seededDatabase(t, "import_catalog_cache")
	ctx := context.Background()
	server := miniredis.RunT(t)

	cache, closeCache := sharedCache(ctx, config.CacheConfig{RedisURL: "redis://" + server.Addr()})
	t.Cleanup(closeCache)
	if cache == nil {
		t.Fatal("expected redis cache")
	}

	// A running server has already cached the seeded prices.
	serving := catalog.NewService(store.NewCatalogStore(database), cache, time.Hour)
	before, err := serving.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if flavorPrices(t, before)["Vanilla"] != "0.00" {
		t.Fatalf("unexpected seeded prices %v", flavorPrices(t, before))
	}

	importer := catalog.NewService(store.NewCatalogStore(database), cache, time.Hour)
	if _, _, err := importRows(ctx, importer, []priceRow{{
		Category: pricing.CategoryFlavor,
		Name:     "Vanilla",
		Price:    decimal.RequireFromString("0.75"),
	}}); err != nil {
		t.Fatalf("importRows: %v", err)
	}

	after, err := serving.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := flavorPrices(t, after)["Vanilla"]; got != "0.75" {
		t.Fatalf("expected server snapshot to show 0.75 after import, got %s", got)
	}
}

func TestSharedCacheWithoutRedis(t *testing.T) {
	cache, closeCache := sharedCache(context.Background(), config.CacheConfig{})
	defer closeCache()
	if cache != nil {
		t.Fatal("expected no cache without a redis url")
	}

	cache, closeCache = sharedCache(context.Background(), config.CacheConfig{RedisURL: "http://not-redis"})
	defer closeCache()
	if cache != nil {
		t.Fatal("expected no cache for an invalid redis url")
	}
}

func TestRunRequiresPath(t *testing.T) {
	if err := run(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
	if err := run(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing sheet")
	}
}
