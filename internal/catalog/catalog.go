// Package catalog serves read-only pricing snapshots of the option tables,
// optionally cached in process memory or Redis.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	applog "dessertbox/internal/log"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
)

// Loader reads the current catalog from storage.
type Loader interface {
	Catalog(ctx context.Context) (pricing.Catalog, error)
}

// PriceUpdater changes a stored option price.
type PriceUpdater interface {
	UpdatePrice(ctx context.Context, category pricing.Category, id uint, price decimal.Decimal) error
}

// OptionUpserter creates or updates an option by name.
type OptionUpserter interface {
	UpsertOption(ctx context.Context, category pricing.Category, name string, price decimal.Decimal, description string) (bool, error)
}

// Cache keeps the last loaded snapshot.
type Cache interface {
	Get(ctx context.Context) (pricing.Catalog, bool, error)
	Set(ctx context.Context, catalog pricing.Catalog, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Service hands out catalog snapshots for pricing and validation.
type Service struct {
	loader   Loader
	updater  PriceUpdater
	upserter OptionUpserter
	cache    Cache
	ttl      time.Duration
}

// NewService builds a Service backed by the catalog store. A nil cache loads
// from storage on every call.
func NewService(catalogStore *store.CatalogStore, cache Cache, ttl time.Duration) *Service {
	return &Service{loader: catalogStore, updater: catalogStore, upserter: catalogStore, cache: cache, ttl: ttl}
}

// Snapshot returns the current catalog. Cache failures fall back to storage.
func (s *Service) Snapshot(ctx context.Context) (pricing.Catalog, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			applog.Error(ctx, "catalog cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	return s.Refresh(ctx)
}

// Refresh loads the catalog from storage and replaces the cached snapshot.
// Callers use it when a cached price may have been changed by another
// process.
func (s *Service) Refresh(ctx context.Context) (pricing.Catalog, error) {
	catalog, err := s.loader.Catalog(ctx)
	if err != nil {
		return pricing.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, catalog, s.ttl); err != nil {
			applog.Error(ctx, "catalog cache write failed", "error", err)
		}
	}
	return catalog, nil
}

// Invalidate drops the cached snapshot so the next Snapshot reads storage.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}

// UpdatePrice stores a new option price and drops the cached snapshot.
func (s *Service) UpdatePrice(ctx context.Context, category pricing.Category, id uint, price decimal.Decimal) error {
	if s.updater == nil {
		return fmt.Errorf("catalog is read-only")
	}
	if err := s.updater.UpdatePrice(ctx, category, id, price); err != nil {
		return err
	}
	if err := s.Invalidate(ctx); err != nil {
		applog.Error(ctx, "catalog cache invalidation failed", "error", err)
	}
	applog.Info(ctx, "catalog price updated", "category", string(category), "id", id, "price", price.StringFixed(2))
	return nil
}

// UpsertOption creates or updates an option by name and drops the cached
// snapshot. It reports whether a new option was created.
func (s *Service) UpsertOption(ctx context.Context, category pricing.Category, name string, price decimal.Decimal, description string) (bool, error) {
	if s.upserter == nil {
		return false, fmt.Errorf("catalog is read-only")
	}
	created, err := s.upserter.UpsertOption(ctx, category, name, price, description)
	if err != nil {
		return false, err
	}
	if err := s.Invalidate(ctx); err != nil {
		applog.Error(ctx, "catalog cache invalidation failed", "error", err)
	}
	return created, nil
}
