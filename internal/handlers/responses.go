package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
	"dessertbox/models"
)

// Money is rendered as a fixed two-decimal string, the way numeric columns
// come back from the database.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type optionResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	BasePrice     string    `json:"base_price,omitempty"`
	PriceModifier string    `json:"price_modifier,omitempty"`
	IsPremium     *bool     `json:"is_premium,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func projectDessertTypes(rows []models.DessertType) []optionResponse {
	out := make([]optionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, optionResponse{ID: row.ID, Name: row.Name, BasePrice: money(row.BasePrice), Description: row.Description, CreatedAt: row.CreatedAt})
	}
	return out
}

func projectFlavors(rows []models.Flavor) []optionResponse {
	out := make([]optionResponse, 0, len(rows))
	for _, row := range rows {
		premium := row.IsPremium
		out = append(out, optionResponse{ID: row.ID, Name: row.Name, PriceModifier: money(row.PriceModifier), IsPremium: &premium, CreatedAt: row.CreatedAt})
	}
	return out
}

func projectPackaging(rows []models.PackagingOption) []optionResponse {
	out := make([]optionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, optionResponse{ID: row.ID, Name: row.Name, PriceModifier: money(row.PriceModifier), Description: row.Description, CreatedAt: row.CreatedAt})
	}
	return out
}

func projectDietary(rows []models.DietaryOption) []optionResponse {
	out := make([]optionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, optionResponse{ID: row.ID, Name: row.Name, PriceModifier: money(row.PriceModifier), Description: row.Description, CreatedAt: row.CreatedAt})
	}
	return out
}

func projectThemes(rows []models.Theme) []optionResponse {
	out := make([]optionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, optionResponse{ID: row.ID, Name: row.Name, PriceModifier: money(row.PriceModifier), Description: row.Description, CreatedAt: row.CreatedAt})
	}
	return out
}

type optionsResponse struct {
	DessertTypes []optionResponse `json:"dessertTypes,omitempty"`
	Flavors      []optionResponse `json:"flavors"`
	Packaging    []optionResponse `json:"packaging"`
	Dietary      []optionResponse `json:"dietary"`
	Themes       []optionResponse `json:"themes"`
}

func projectOptions(opts store.Options, withDessertTypes bool) optionsResponse {
	resp := optionsResponse{
		Flavors:   projectFlavors(opts.Flavors),
		Packaging: projectPackaging(opts.Packaging),
		Dietary:   projectDietary(opts.Dietary),
		Themes:    projectThemes(opts.Themes),
	}
	if withDessertTypes {
		resp.DessertTypes = projectDessertTypes(opts.DessertTypes)
	}
	return resp
}

// boxResponse is a stored box with the names and current prices of the
// options it references. TotalPrice is always the stored value.
type boxResponse struct {
	ID                uint      `json:"id"`
	DessertTypeID     uint      `json:"dessert_type_id"`
	FlavorID          uint      `json:"flavor_id"`
	PackagingID       uint      `json:"packaging_id"`
	DietaryID         uint      `json:"dietary_id"`
	ThemeID           uint      `json:"theme_id"`
	Quantity          int       `json:"quantity"`
	CustomMessage     *string   `json:"custom_message"`
	TotalPrice        string    `json:"total_price"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	DessertTypeName   *string   `json:"dessert_type_name"`
	BasePrice         *string   `json:"base_price"`
	FlavorName        *string   `json:"flavor_name"`
	FlavorModifier    *string   `json:"flavor_modifier"`
	PackagingName     *string   `json:"packaging_name"`
	PackagingModifier *string   `json:"packaging_modifier"`
	DietaryName       *string   `json:"dietary_name"`
	DietaryModifier   *string   `json:"dietary_modifier"`
	ThemeName         *string   `json:"theme_name"`
	ThemeModifier     *string   `json:"theme_modifier"`
}

func projectBox(box models.DessertBox) boxResponse {
	resp := boxResponse{
		ID:            box.ID,
		DessertTypeID: box.DessertTypeID,
		FlavorID:      box.FlavorID,
		PackagingID:   box.PackagingID,
		DietaryID:     box.DietaryID,
		ThemeID:       box.ThemeID,
		Quantity:      box.Quantity,
		CustomMessage: box.CustomMessage,
		TotalPrice:    money(box.TotalPrice),
		CreatedAt:     box.CreatedAt,
		UpdatedAt:     box.UpdatedAt,
	}
	if box.DessertType != nil {
		resp.DessertTypeName, resp.BasePrice = joined(box.DessertType.Name, box.DessertType.BasePrice)
	}
	if box.Flavor != nil {
		resp.FlavorName, resp.FlavorModifier = joined(box.Flavor.Name, box.Flavor.PriceModifier)
	}
	if box.Packaging != nil {
		resp.PackagingName, resp.PackagingModifier = joined(box.Packaging.Name, box.Packaging.PriceModifier)
	}
	if box.Dietary != nil {
		resp.DietaryName, resp.DietaryModifier = joined(box.Dietary.Name, box.Dietary.PriceModifier)
	}
	if box.Theme != nil {
		resp.ThemeName, resp.ThemeModifier = joined(box.Theme.Name, box.Theme.PriceModifier)
	}
	return resp
}

func joined(name string, price decimal.Decimal) (*string, *string) {
	formatted := money(price)
	return &name, &formatted
}

func projectBoxes(rows []models.DessertBox) []boxResponse {
	out := make([]boxResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, projectBox(row))
	}
	return out
}

type breakdownResponse struct {
	BasePrice         string `json:"base_price"`
	FlavorModifier    string `json:"flavor_modifier"`
	PackagingModifier string `json:"packaging_modifier"`
	DietaryModifier   string `json:"dietary_modifier"`
	ThemeModifier     string `json:"theme_modifier"`
	UnitPrice         string `json:"unit_price"`
	Quantity          int    `json:"quantity"`
	TotalPrice        string `json:"total_price"`
}

type quoteResponse struct {
	Breakdown  breakdownResponse `json:"breakdown"`
	Violations []string          `json:"violations"`
	Valid      bool              `json:"valid"`
}

func projectQuote(quote pricing.Quote) quoteResponse {
	b := quote.Breakdown
	violations := quote.Violations
	if violations == nil {
		violations = []string{}
	}
	return quoteResponse{
		Breakdown: breakdownResponse{
			BasePrice:         money(b.BasePrice),
			FlavorModifier:    money(b.FlavorModifier),
			PackagingModifier: money(b.PackagingModifier),
			DietaryModifier:   money(b.DietaryModifier),
			ThemeModifier:     money(b.ThemeModifier),
			UnitPrice:         money(b.UnitPrice),
			Quantity:          b.Quantity,
			TotalPrice:        money(b.TotalPrice),
		},
		Violations: violations,
		Valid:      quote.Valid,
	}
}
