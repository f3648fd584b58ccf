package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dessertbox/internal/db"
	applog "dessertbox/internal/log"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
	"dessertbox/models"
)

// AdminEmail and AdminPassword sign in to the seeded mock database.
const (
	AdminEmail    = "baker@dessertbox.local"
	AdminPassword = "ganache"
)

// New returns an in-memory sqlite database seeded with the default catalog,
// an administrator and a couple of sample boxes.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:dessertbox-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := db.SeedCatalog(ctx, database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	userStore := store.NewUserStore(database)
	users, err := userStore.Count(ctx)
	if err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	if _, err := userStore.Create(ctx, AdminEmail, "Pastry Admin", AdminPassword); err != nil {
		return err
	}

	catalogStore := store.NewCatalogStore(database)
	catalog, err := catalogStore.Catalog(ctx)
	if err != nil {
		return err
	}

	samples := []struct {
		dessertType, flavor, packaging, dietary, theme string
		quantity                                       int
		message                                        string
	}{
		{"Brownies", "Caramel", "Ribbon Wrap", "Regular", "Minimalist", 12, ""},
		{"Cookies", "Chocolate", "Gift Bag", "Vegan", "Birthday", 24, "Happy birthday, Sam!"},
	}

	boxStore := store.NewBoxStore(database)
	for _, sample := range samples {
		sel := pricing.Selection{
			DessertTypeID: optionID(catalog, pricing.CategoryDessertType, sample.dessertType),
			FlavorID:      optionID(catalog, pricing.CategoryFlavor, sample.flavor),
			PackagingID:   optionID(catalog, pricing.CategoryPackaging, sample.packaging),
			DietaryID:     optionID(catalog, pricing.CategoryDietary, sample.dietary),
			ThemeID:       optionID(catalog, pricing.CategoryTheme, sample.theme),
			Quantity:      sample.quantity,
		}
		box := &models.DessertBox{
			DessertTypeID: sel.DessertTypeID,
			FlavorID:      sel.FlavorID,
			PackagingID:   sel.PackagingID,
			DietaryID:     sel.DietaryID,
			ThemeID:       sel.ThemeID,
			Quantity:      sel.Quantity,
			TotalPrice:    pricing.ComputePrice(sel, catalog).TotalPrice,
		}
		if sample.message != "" {
			message := sample.message
			box.CustomMessage = &message
		}
		if err := boxStore.Create(ctx, box); err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}

func optionID(catalog pricing.Catalog, category pricing.Category, name string) uint {
	for _, option := range catalog.Options(category) {
		if option.Name == name {
			return option.ID
		}
	}
	return 0
}
