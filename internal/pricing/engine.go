package pricing

import "github.com/shopspring/decimal"

// Breakdown itemizes a computed price so a receipt can be rendered without
// recomputation.
type Breakdown struct {
	BasePrice         decimal.Decimal `json:"base_price"`
	FlavorModifier    decimal.Decimal `json:"flavor_modifier"`
	PackagingModifier decimal.Decimal `json:"packaging_modifier"`
	DietaryModifier   decimal.Decimal `json:"dietary_modifier"`
	ThemeModifier     decimal.Decimal `json:"theme_modifier"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	TotalPrice        decimal.Decimal `json:"total_price"`
}

// ComputePrice prices a selection against the catalog. Unknown or unset ids
// contribute zero and a non-positive quantity is priced as one piece, so a
// partial selection still yields a preview.
func ComputePrice(sel Selection, catalog Catalog) Breakdown {
	b := Breakdown{
		BasePrice:         catalog.price(CategoryDessertType, sel.DessertTypeID),
		FlavorModifier:    catalog.price(CategoryFlavor, sel.FlavorID),
		PackagingModifier: catalog.price(CategoryPackaging, sel.PackagingID),
		DietaryModifier:   catalog.price(CategoryDietary, sel.DietaryID),
		ThemeModifier:     catalog.price(CategoryTheme, sel.ThemeID),
		Quantity:          effectiveQuantity(sel.Quantity),
	}

	unit := b.BasePrice.
		Add(b.FlavorModifier).
		Add(b.PackagingModifier).
		Add(b.DietaryModifier).
		Add(b.ThemeModifier)

	b.UnitPrice = Round(unit)
	b.TotalPrice = Round(b.UnitPrice.Mul(decimal.NewFromInt(int64(b.Quantity))))
	return b
}

// Round rounds to whole cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func effectiveQuantity(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}
