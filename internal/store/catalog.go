package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dessertbox/internal/pricing"
	"dessertbox/models"
)

// CatalogStore reads the five option tables.
type CatalogStore struct {
	db *gorm.DB
}

// NewCatalogStore wraps an open database handle.
func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// Options holds every option table in one value.
type Options struct {
	DessertTypes []models.DessertType     `json:"dessertTypes"`
	Flavors      []models.Flavor          `json:"flavors"`
	Packaging    []models.PackagingOption `json:"packaging"`
	Dietary      []models.DietaryOption   `json:"dietary"`
	Themes       []models.Theme           `json:"themes"`
}

func (s *CatalogStore) handle(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return s.db.WithContext(ctx), nil
}

func (s *CatalogStore) DessertTypes(ctx context.Context, order string) ([]models.DessertType, error) {
	var rows []models.DessertType
	if err := s.find(ctx, order, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CatalogStore) Flavors(ctx context.Context, order string) ([]models.Flavor, error) {
	var rows []models.Flavor
	if err := s.find(ctx, order, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CatalogStore) Packaging(ctx context.Context, order string) ([]models.PackagingOption, error) {
	var rows []models.PackagingOption
	if err := s.find(ctx, order, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CatalogStore) Dietary(ctx context.Context, order string) ([]models.DietaryOption, error) {
	var rows []models.DietaryOption
	if err := s.find(ctx, order, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CatalogStore) Themes(ctx context.Context, order string) ([]models.Theme, error) {
	var rows []models.Theme
	if err := s.find(ctx, order, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CatalogStore) find(ctx context.Context, order string, dest any) error {
	tx, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if order == "" {
		order = OrderByName
	}
	if err := tx.Order(order).Find(dest).Error; err != nil {
		return fmt.Errorf("list %T: %w", dest, err)
	}
	return nil
}

// All loads every option table with the given ordering.
func (s *CatalogStore) All(ctx context.Context, order string) (Options, error) {
	var (
		opts Options
		err  error
	)
	if opts.DessertTypes, err = s.DessertTypes(ctx, order); err != nil {
		return Options{}, err
	}
	if opts.Flavors, err = s.Flavors(ctx, order); err != nil {
		return Options{}, err
	}
	if opts.Packaging, err = s.Packaging(ctx, order); err != nil {
		return Options{}, err
	}
	if opts.Dietary, err = s.Dietary(ctx, order); err != nil {
		return Options{}, err
	}
	if opts.Themes, err = s.Themes(ctx, order); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Catalog loads a pricing snapshot of every option, sorted by name.
func (s *CatalogStore) Catalog(ctx context.Context) (pricing.Catalog, error) {
	opts, err := s.All(ctx, OrderByName)
	if err != nil {
		return pricing.Catalog{}, err
	}
	return opts.Catalog(), nil
}

// Catalog converts the option rows to a pricing snapshot.
func (o Options) Catalog() pricing.Catalog {
	catalog := pricing.Catalog{
		DessertTypes: make([]pricing.Option, 0, len(o.DessertTypes)),
		Flavors:      make([]pricing.Option, 0, len(o.Flavors)),
		Packaging:    make([]pricing.Option, 0, len(o.Packaging)),
		Dietary:      make([]pricing.Option, 0, len(o.Dietary)),
		Themes:       make([]pricing.Option, 0, len(o.Themes)),
	}
	for _, row := range o.DessertTypes {
		catalog.DessertTypes = append(catalog.DessertTypes, pricing.Option{ID: row.ID, Name: row.Name, Price: row.BasePrice})
	}
	for _, row := range o.Flavors {
		catalog.Flavors = append(catalog.Flavors, pricing.Option{ID: row.ID, Name: row.Name, Price: row.PriceModifier, IsPremium: row.IsPremium})
	}
	for _, row := range o.Packaging {
		catalog.Packaging = append(catalog.Packaging, pricing.Option{ID: row.ID, Name: row.Name, Price: row.PriceModifier})
	}
	for _, row := range o.Dietary {
		catalog.Dietary = append(catalog.Dietary, pricing.Option{ID: row.ID, Name: row.Name, Price: row.PriceModifier})
	}
	for _, row := range o.Themes {
		catalog.Themes = append(catalog.Themes, pricing.Option{ID: row.ID, Name: row.Name, Price: row.PriceModifier})
	}
	return catalog
}

// UpdatePrice changes the base price of a dessert type or the modifier of any
// other option. Stored boxes keep the total they were saved with.
func (s *CatalogStore) UpdatePrice(ctx context.Context, category pricing.Category, id uint, price decimal.Decimal) error {
	tx, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if price.IsNegative() {
		return fmt.Errorf("price must not be negative: %s", price)
	}

	var (
		model  any
		column = "price_modifier"
	)
	switch category {
	case pricing.CategoryDessertType:
		model, column = &models.DessertType{}, "base_price"
	case pricing.CategoryFlavor:
		model = &models.Flavor{}
	case pricing.CategoryPackaging:
		model = &models.PackagingOption{}
	case pricing.CategoryDietary:
		model = &models.DietaryOption{}
	case pricing.CategoryTheme:
		model = &models.Theme{}
	default:
		return fmt.Errorf("unknown category %q", category)
	}

	result := tx.Model(model).Where("id = ?", id).Update(column, pricing.Round(price))
	if result.Error != nil {
		return fmt.Errorf("update %s price: %w", category, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertOption creates or updates an option by name. It reports whether a
// new row was created.
func (s *CatalogStore) UpsertOption(ctx context.Context, category pricing.Category, name string, price decimal.Decimal, description string) (bool, error) {
	tx, err := s.handle(ctx)
	if err != nil {
		return false, err
	}

	var created bool
	err = tx.Transaction(func(tx *gorm.DB) error {
		var (
			existing any
			fresh    any
			column   = "price_modifier"
		)
		switch category {
		case pricing.CategoryDessertType:
			existing = &models.DessertType{}
			fresh = &models.DessertType{Name: name, BasePrice: price, Description: description}
			column = "base_price"
		case pricing.CategoryFlavor:
			existing = &models.Flavor{}
			fresh = &models.Flavor{Name: name, PriceModifier: price, IsPremium: price.IsPositive()}
		case pricing.CategoryPackaging:
			existing = &models.PackagingOption{}
			fresh = &models.PackagingOption{Name: name, PriceModifier: price, Description: description}
		case pricing.CategoryDietary:
			existing = &models.DietaryOption{}
			fresh = &models.DietaryOption{Name: name, PriceModifier: price, Description: description}
		case pricing.CategoryTheme:
			existing = &models.Theme{}
			fresh = &models.Theme{Name: name, PriceModifier: price, Description: description}
		default:
			return fmt.Errorf("unknown category %q", category)
		}

		err := tx.Where("name = ?", name).First(existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			return tx.Create(fresh).Error
		case err != nil:
			return err
		}

		updates := map[string]any{column: price}
		if description != "" && category != pricing.CategoryFlavor {
			updates["description"] = description
		}
		return tx.Model(existing).Updates(updates).Error
	})
	if err != nil {
		return false, fmt.Errorf("upsert %s %q: %w", category, name, err)
	}
	return created, nil
}
