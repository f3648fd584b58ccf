// Package pricing derives dessert box prices from catalog selections and
// checks selections for incomplete or impossible combinations. It performs
// no I/O and is shared by the live preview and the submit path.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category names one of the five independent attribute axes of a box.
type Category string

const (
	CategoryDessertType Category = "dessert-types"
	CategoryFlavor      Category = "flavors"
	CategoryPackaging   Category = "packaging"
	CategoryDietary     Category = "dietary"
	CategoryTheme       Category = "themes"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryDessertType,
	CategoryFlavor,
	CategoryPackaging,
	CategoryDietary,
	CategoryTheme,
}

// ParseCategory resolves a path segment or form value into a Category.
func ParseCategory(value string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dessert-types", "dessert_types", "dessert-type", "dessert_type":
		return CategoryDessertType, true
	case "flavors", "flavor":
		return CategoryFlavor, true
	case "packaging", "packaging_options", "packaging-options":
		return CategoryPackaging, true
	case "dietary", "dietary_options", "dietary-options":
		return CategoryDietary, true
	case "themes", "theme":
		return CategoryTheme, true
	default:
		return "", false
	}
}

// Option is one catalog entry. For dessert types Price is the base price;
// for every other category it is an additive per-piece modifier.
type Option struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	IsPremium bool            `json:"is_premium,omitempty"`
}

// Catalog is a read-only snapshot of the five option sets.
type Catalog struct {
	DessertTypes []Option `json:"dessert_types"`
	Flavors      []Option `json:"flavors"`
	Packaging    []Option `json:"packaging"`
	Dietary      []Option `json:"dietary"`
	Themes       []Option `json:"themes"`
}

// Options returns the option list for a category.
func (c Catalog) Options(category Category) []Option {
	switch category {
	case CategoryDessertType:
		return c.DessertTypes
	case CategoryFlavor:
		return c.Flavors
	case CategoryPackaging:
		return c.Packaging
	case CategoryDietary:
		return c.Dietary
	case CategoryTheme:
		return c.Themes
	default:
		return nil
	}
}

// Lookup finds an option by id. A zero id never resolves.
func (c Catalog) Lookup(category Category, id uint) (Option, bool) {
	if id == 0 {
		return Option{}, false
	}
	for _, option := range c.Options(category) {
		if option.ID == id {
			return option, true
		}
	}
	return Option{}, false
}

// Selection is the client-held choice of one option per category.
// A zero id means the category has not been chosen yet.
type Selection struct {
	DessertTypeID uint   `json:"dessert_type_id"`
	FlavorID      uint   `json:"flavor_id"`
	PackagingID   uint   `json:"packaging_id"`
	DietaryID     uint   `json:"dietary_id"`
	ThemeID       uint   `json:"theme_id"`
	Quantity      int    `json:"quantity"`
	CustomMessage string `json:"custom_message,omitempty"`
}

// ID returns the selected option id for a category.
func (s Selection) ID(category Category) uint {
	switch category {
	case CategoryDessertType:
		return s.DessertTypeID
	case CategoryFlavor:
		return s.FlavorID
	case CategoryPackaging:
		return s.PackagingID
	case CategoryDietary:
		return s.DietaryID
	case CategoryTheme:
		return s.ThemeID
	default:
		return 0
	}
}

func (c Catalog) price(category Category, id uint) decimal.Decimal {
	option, ok := c.Lookup(category, id)
	if !ok {
		return decimal.Zero
	}
	return option.Price
}

func (c Catalog) name(category Category, id uint) string {
	option, ok := c.Lookup(category, id)
	if !ok {
		return ""
	}
	return option.Name
}
