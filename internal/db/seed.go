package db

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "dessertbox/internal/log"
	"dessertbox/models"
)

type seedOption struct {
	name        string
	price       string
	description string
	premium     bool
}

var (
	seedDessertTypes = []seedOption{
		{name: "Cookies", price: "15.00", description: "Classic homemade cookies"},
		{name: "Cupcakes", price: "25.00", description: "Moist and fluffy cupcakes"},
		{name: "Macarons", price: "35.00", description: "Delicate French macarons"},
		{name: "Brownies", price: "20.00", description: "Rich chocolate brownies"},
	}
	seedFlavors = []seedOption{
		{name: "Chocolate", price: "0.00"},
		{name: "Vanilla", price: "0.00"},
		{name: "Strawberry", price: "2.00", premium: true},
		{name: "Matcha", price: "3.00", premium: true},
		{name: "Red Velvet", price: "2.50", premium: true},
		{name: "Lemon", price: "1.50"},
		{name: "Caramel", price: "2.00", premium: true},
	}
	seedPackaging = []seedOption{
		{name: "Basic Box", price: "0.00", description: "Simple cardboard box"},
		{name: "Ribbon Wrap", price: "3.00", description: "Elegant ribbon wrapping"},
		{name: "Custom Message Card", price: "5.00", description: "Personalized message card included"},
		{name: "Gift Bag", price: "2.50", description: "Decorative gift bag"},
		{name: "Premium Box", price: "8.00", description: "Luxury gift box with bow"},
	}
	seedDietary = []seedOption{
		{name: "Regular", price: "0.00", description: "Standard ingredients"},
		{name: "Vegan", price: "4.00", description: "Plant-based alternatives"},
		{name: "Gluten-Free", price: "3.00", description: "No gluten ingredients"},
		{name: "Keto", price: "5.00", description: "Low-carb, high-fat options"},
		{name: "Sugar-Free", price: "2.50", description: "Sugar alternatives used"},
	}
	seedThemes = []seedOption{
		{name: "Classic", price: "0.00", description: "Simple, elegant design"},
		{name: "Birthday", price: "3.00", description: "Colorful birthday celebration"},
		{name: "Holiday", price: "4.00", description: "Seasonal holiday decorations"},
		{name: "Romantic", price: "5.00", description: "Romantic hearts and roses"},
		{name: "Minimalist", price: "1.00", description: "Clean, modern aesthetic"},
	}
)

// SeedCatalog inserts the default option sets. Existing rows are matched by
// name and left untouched, so running it again is harmless.
func SeedCatalog(ctx context.Context, database *gorm.DB) error {
	if database == nil {
		return gorm.ErrInvalidDB
	}
	applog.Debug(ctx, "seeding catalog")

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, opt := range seedDessertTypes {
			row := models.DessertType{Name: opt.name, BasePrice: mustPrice(opt.price), Description: opt.description}
			if err := tx.Where(models.DessertType{Name: opt.name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed dessert type %q: %w", opt.name, err)
			}
		}
		for _, opt := range seedFlavors {
			row := models.Flavor{Name: opt.name, PriceModifier: mustPrice(opt.price), IsPremium: opt.premium}
			if err := tx.Where(models.Flavor{Name: opt.name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed flavor %q: %w", opt.name, err)
			}
		}
		for _, opt := range seedPackaging {
			row := models.PackagingOption{Name: opt.name, PriceModifier: mustPrice(opt.price), Description: opt.description}
			if err := tx.Where(models.PackagingOption{Name: opt.name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed packaging %q: %w", opt.name, err)
			}
		}
		for _, opt := range seedDietary {
			row := models.DietaryOption{Name: opt.name, PriceModifier: mustPrice(opt.price), Description: opt.description}
			if err := tx.Where(models.DietaryOption{Name: opt.name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed dietary option %q: %w", opt.name, err)
			}
		}
		for _, opt := range seedThemes {
			row := models.Theme{Name: opt.name, PriceModifier: mustPrice(opt.price), Description: opt.description}
			if err := tx.Where(models.Theme{Name: opt.name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed theme %q: %w", opt.name, err)
			}
		}
		return nil
	})
}

func mustPrice(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
