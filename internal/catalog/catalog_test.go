package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dessertbox/internal/db"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
)

type stubLoader struct {
	calls   int
	catalog pricing.Catalog
	err     error
}

func (s *stubLoader) Catalog(context.Context) (pricing.Catalog, error) {
	s.calls++
	return s.catalog, s.err
}

type stubUpdater struct {
	category pricing.Category
	id       uint
	price    decimal.Decimal
	err      error
}

func (s *stubUpdater) UpdatePrice(_ context.Context, category pricing.Category, id uint, price decimal.Decimal) error {
	s.category, s.id, s.price = category, id, price
	return s.err
}

type failingCache struct{}

func (failingCache) Get(context.Context) (pricing.Catalog, bool, error) {
	return pricing.Catalog{}, false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, pricing.Catalog, time.Duration) error {
	return errors.New("connection refused")
}

func (failingCache) Invalidate(context.Context) error {
	return errors.New("connection refused")
}

func sampleCatalog() pricing.Catalog {
	return pricing.Catalog{
		DessertTypes: []pricing.Option{{ID: 4, Name: "Brownies", Price: decimal.RequireFromString("20.00")}},
	}
}

func TestSnapshotUsesCache(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{catalog: sampleCatalog()}
	svc := &Service{loader: loader, cache: NewMemoryCache(), ttl: time.Minute}

	for i := 0; i < 3; i++ {
		catalog, err := svc.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(catalog.DessertTypes) != 1 {
			t.Fatalf("unexpected catalog %+v", catalog)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected one storage load, got %d", loader.calls)
	}
}

func TestSnapshotWithoutCacheLoadsEveryTime(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{catalog: sampleCatalog()}
	svc := &Service{loader: loader}
	for i := 0; i < 2; i++ {
		if _, err := svc.Snapshot(context.Background()); err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected two storage loads, got %d", loader.calls)
	}
}

func TestSnapshotFallsBackWhenCacheFails(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{catalog: sampleCatalog()}
	svc := &Service{loader: loader, cache: failingCache{}}
	catalog, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(catalog.DessertTypes) != 1 {
		t.Fatalf("unexpected catalog %+v", catalog)
	}
}

func TestSnapshotPropagatesLoadError(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("db down")
	svc := &Service{loader: &stubLoader{err: loadErr}, cache: NewMemoryCache()}
	if _, err := svc.Snapshot(context.Background()); !errors.Is(err, loadErr) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}

func TestUpdatePriceInvalidatesCache(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{catalog: sampleCatalog()}
	updater := &stubUpdater{}
	svc := &Service{loader: loader, updater: updater, cache: NewMemoryCache(), ttl: time.Hour}

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if err := svc.UpdatePrice(context.Background(), pricing.CategoryDessertType, 4, decimal.NewFromInt(22)); err != nil {
		t.Fatalf("UpdatePrice() error = %v", err)
	}
	if updater.category != pricing.CategoryDessertType || updater.id != 4 || !updater.price.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("unexpected update %+v", updater)
	}
	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidation, got %d loads", loader.calls)
	}
}

func TestUpdatePriceWithoutUpdater(t *testing.T) {
	t.Parallel()

	svc := &Service{loader: &stubLoader{}}
	if err := svc.UpdatePrice(context.Background(), pricing.CategoryTheme, 1, decimal.Zero); err == nil {
		t.Fatal("expected error for read-only catalog")
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	if err := cache.Set(context.Background(), sampleCatalog(), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := cache.Get(context.Background()); !ok {
		t.Fatal("expected cache hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(context.Background()); ok {
		t.Fatal("expected cache miss after expiry")
	}
}

func TestNewRedisCacheValidatesURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisCache(""); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewRedisCache("http://not-redis"); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
	cache, err := NewRedisCache("redis://localhost:6379/0")
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func seededStore(t *testing.T, name string) *store.CatalogStore {
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
	return store.NewCatalogStore(database)
}

func browniesPrice(t *testing.T, catalog pricing.Catalog) string {
	t.Helper()

	for _, option := range catalog.DessertTypes {
		if option.Name == "Brownies" {
			return option.Price.StringFixed(2)
		}
	}
	t.Fatal("Brownies missing from catalog")
	return ""
}

func TestUpsertOptionRefreshesSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := NewService(seededStore(t, "catalog_upsert"), NewMemoryCache(), time.Hour)

	before, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := browniesPrice(t, before); got != "20.00" {
		t.Fatalf("expected seeded price 20.00, got %s", got)
	}

	created, err := svc.UpsertOption(ctx, pricing.CategoryDessertType, "Brownies", decimal.NewFromInt(22), "")
	if err != nil {
		t.Fatalf("UpsertOption() error = %v", err)
	}
	if created {
		t.Fatal("expected existing option to be updated")
	}

	after, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := browniesPrice(t, after); got != "22.00" {
		t.Fatalf("expected snapshot to show 22.00 after upsert, got %s", got)
	}
}

func TestRefreshReadsChangesMadeBehindTheCache(t *testing.T) {
	ctx := context.Background()
	catalogStore := seededStore(t, "catalog_refresh")
	svc := NewService(catalogStore, NewMemoryCache(), time.Hour)

	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if _, err := catalogStore.UpsertOption(ctx, pricing.CategoryDessertType, "Brownies", decimal.NewFromInt(24), ""); err != nil {
		t.Fatalf("UpsertOption() error = %v", err)
	}

	stale, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := browniesPrice(t, stale); got != "20.00" {
		t.Fatalf("expected cached price 20.00, got %s", got)
	}

	fresh, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := browniesPrice(t, fresh); got != "24.00" {
		t.Fatalf("expected refreshed price 24.00, got %s", got)
	}
	cached, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := browniesPrice(t, cached); got != "24.00" {
		t.Fatalf("expected refresh to replace the cached snapshot, got %s", got)
	}
}

func TestUpsertOptionWithoutUpserter(t *testing.T) {
	t.Parallel()

	svc := &Service{loader: &stubLoader{}}
	if _, err := svc.UpsertOption(context.Background(), pricing.CategoryTheme, "Spooky", decimal.Zero, ""); err == nil {
		t.Fatal("expected error for read-only catalog")
	}
	if err := svc.Invalidate(context.Background()); err != nil {
		t.Fatalf("Invalidate() without cache error = %v", err)
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	server := miniredis.RunT(t)
	cache, err := NewRedisCache("redis://" + server.Addr() + "/0")
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	if err := cache.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if _, ok, err := cache.Get(ctx); err != nil || ok {
		t.Fatalf("expected empty cache, got ok=%t err=%v", ok, err)
	}

	if err := cache.Set(ctx, sampleCatalog(), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ttl := server.TTL(redisKey); ttl != time.Minute {
		t.Fatalf("expected key ttl of one minute, got %s", ttl)
	}
	got, ok, err := cache.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%t err=%v", ok, err)
	}
	if browniesPrice(t, got) != "20.00" {
		t.Fatalf("unexpected cached catalog %+v", got)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if server.Exists(redisKey) {
		t.Fatal("expected key to be deleted")
	}
	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatal("expected cache miss after invalidation")
	}

	server.FastForward(2 * time.Minute)
	if err := cache.Set(ctx, sampleCatalog(), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	server.FastForward(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatal("expected cache miss after ttl elapsed")
	}
}

func TestRedisCacheRejectsCorruptEntry(t *testing.T) {
	server := miniredis.RunT(t)
	cache, err := NewRedisCache("redis://" + server.Addr())
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	if err := server.Set(redisKey, "{not json"); err != nil {
		t.Fatalf("seed redis: %v", err)
	}
	if _, ok, err := cache.Get(context.Background()); err == nil || ok {
		t.Fatalf("expected decode error, got ok=%t err=%v", ok, err)
	}
}

func TestSnapshotSharedThroughRedis(t *testing.T) {
	server := miniredis.RunT(t)
	cache, err := NewRedisCache("redis://" + server.Addr())
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	first := &stubLoader{catalog: sampleCatalog()}
	second := &stubLoader{catalog: sampleCatalog()}
	ctx := context.Background()
	if _, err := (&Service{loader: first, cache: cache, ttl: time.Minute}).Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if _, err := (&Service{loader: second, cache: cache, ttl: time.Minute}).Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if first.calls != 1 || second.calls != 0 {
		t.Fatalf("expected the second instance to read redis, got loads %d and %d", first.calls, second.calls)
	}
}
