// Package pages holds the server-rendered pages and their view models.
package pages

//go:generate templ generate

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dessertbox/internal/pricing"
	"dessertbox/models"
)

// BoxSummary is the display form of a stored dessert box.
type BoxSummary struct {
	ID            uint
	DessertType   string
	Flavor        string
	Packaging     string
	Dietary       string
	Theme         string
	Quantity      int
	CustomMessage string
	TotalPrice    string
	CreatedAt     string
	UpdatedAt     string
}

// NewBoxSummary projects a stored box for the list and detail pages.
func NewBoxSummary(box models.DessertBox) BoxSummary {
	dessertType, flavor, packaging, dietary, theme := box.DisplayNames()
	return BoxSummary{
		ID:            box.ID,
		DessertType:   orUnknown(dessertType),
		Flavor:        orUnknown(flavor),
		Packaging:     orUnknown(packaging),
		Dietary:       orUnknown(dietary),
		Theme:         orUnknown(theme),
		Quantity:      box.Quantity,
		CustomMessage: box.Message(),
		TotalPrice:    FormatMoney(box.TotalPrice),
		CreatedAt:     FormatDate(box.CreatedAt),
		UpdatedAt:     FormatDate(box.UpdatedAt),
	}
}

// BoxListData feeds the box list page.
type BoxListData struct {
	Boxes []BoxSummary
	Flash string
	Error string
}

// BoxFormData feeds the create and edit form.
type BoxFormData struct {
	Title           string
	Action          string
	Catalog         pricing.Catalog
	Selection       pricing.Selection
	Quote           pricing.Quote
	QuantityChoices []int
	Errors          []string
}

// FormatMoney renders an amount with a dollar sign and two decimals.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// FormatDate renders a timestamp for listings.
func FormatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("02 Jan 2006 15:04")
}

// ParseUint parses a form value, returning zero for blanks and garbage.
func ParseUint(value string) uint {
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

// OptionLabel renders an option for a select box.
func OptionLabel(category pricing.Category, option pricing.Option) string {
	label := option.Name
	switch {
	case category == pricing.CategoryDessertType:
		label += " (" + FormatMoney(option.Price) + " each)"
	case option.Price.IsPositive():
		label += " (+" + FormatMoney(option.Price) + ")"
	}
	if option.IsPremium {
		label += " ★"
	}
	return label
}

// CategoryLabel is the human name of a category.
func CategoryLabel(category pricing.Category) string {
	switch category {
	case pricing.CategoryDessertType:
		return "Dessert type"
	case pricing.CategoryFlavor:
		return "Flavor"
	case pricing.CategoryPackaging:
		return "Packaging"
	case pricing.CategoryDietary:
		return "Dietary option"
	case pricing.CategoryTheme:
		return "Theme"
	default:
		return string(category)
	}
}

// FieldName is the form field carrying a category's selected id.
func FieldName(category pricing.Category) string {
	switch category {
	case pricing.CategoryDessertType:
		return "dessert_type_id"
	case pricing.CategoryFlavor:
		return "flavor_id"
	case pricing.CategoryPackaging:
		return "packaging_id"
	case pricing.CategoryDietary:
		return "dietary_id"
	case pricing.CategoryTheme:
		return "theme_id"
	default:
		return ""
	}
}

func pageTitle(title string) string {
	return title + " | Dessert Box"
}

func idText(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func boxHeading(id uint) string {
	return "Dessert box #" + idText(id)
}

// boxPath builds a box route, with an optional trailing action segment.
func boxPath(id uint, action string) string {
	path := "/boxes/" + idText(id)
	if action != "" {
		path += "/" + action
	}
	return path
}

func orUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}
