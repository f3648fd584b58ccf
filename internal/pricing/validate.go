package pricing

import "sort"

// Pair identifies a dessert type and dietary option by name.
type Pair struct {
	DessertType string `json:"dessert_type"`
	Dietary     string `json:"dietary"`
}

// Incompatibility is one forbidden pair and the message shown to the user.
type Incompatibility struct {
	Pair
	Message string `json:"message"`
}

// incompatible is keyed by option names so renumbered catalog rows keep
// their rules. Map keys keep every pair unique.
var incompatible = map[Pair]string{
	{DessertType: "Macarons", Dietary: "Keto"}:       "Macarons cannot be made keto-friendly due to their sugar content",
	{DessertType: "Brownies", Dietary: "Sugar-Free"}: "Brownies cannot be made sugar-free due to their chocolate content",
	{DessertType: "Macarons", Dietary: "Sugar-Free"}: "Macarons cannot be made sugar-free due to their delicate sugar structure",
	{DessertType: "Cupcakes", Dietary: "Keto"}:       "Cupcakes cannot be made keto-friendly due to their flour content",
}

// Completeness messages, one per missing field.
const (
	MsgSelectDessertType = "Please select a dessert type"
	MsgSelectFlavor      = "Please select a flavor"
	MsgSelectPackaging   = "Please select packaging"
	MsgSelectDietary     = "Please select dietary option"
	MsgSelectTheme       = "Please select a theme"
	MsgSelectQuantity    = "Please select a valid quantity"
)

// Validate lists every reason the selection cannot be submitted. An empty
// result means the selection is valid. Option ids that do not resolve are
// not reported here; they simply price at zero.
func Validate(sel Selection, catalog Catalog) []string {
	violations := make([]string, 0)

	if sel.DessertTypeID == 0 {
		violations = append(violations, MsgSelectDessertType)
	}
	if sel.FlavorID == 0 {
		violations = append(violations, MsgSelectFlavor)
	}
	if sel.PackagingID == 0 {
		violations = append(violations, MsgSelectPackaging)
	}
	if sel.DietaryID == 0 {
		violations = append(violations, MsgSelectDietary)
	}
	if sel.ThemeID == 0 {
		violations = append(violations, MsgSelectTheme)
	}
	if sel.Quantity < 1 {
		violations = append(violations, MsgSelectQuantity)
	}

	if sel.DessertTypeID != 0 && sel.DietaryID != 0 {
		pair := Pair{
			DessertType: catalog.name(CategoryDessertType, sel.DessertTypeID),
			Dietary:     catalog.name(CategoryDietary, sel.DietaryID),
		}
		if message, ok := incompatible[pair]; ok {
			violations = append(violations, message)
		}
	}

	return violations
}

// Incompatibilities returns the forbidden pair table sorted by dessert type
// then dietary option.
func Incompatibilities() []Incompatibility {
	rows := make([]Incompatibility, 0, len(incompatible))
	for pair, message := range incompatible {
		rows = append(rows, Incompatibility{Pair: pair, Message: message})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DessertType == rows[j].DessertType {
			return rows[i].Dietary < rows[j].Dietary
		}
		return rows[i].DessertType < rows[j].DessertType
	})
	return rows
}

// Quote combines the price breakdown with the submit blockers for one
// selection.
type Quote struct {
	Breakdown  Breakdown `json:"breakdown"`
	Violations []string  `json:"violations"`
	Valid      bool      `json:"valid"`
}

// Evaluate prices and validates a selection in one call.
func Evaluate(sel Selection, catalog Catalog) Quote {
	violations := Validate(sel, catalog)
	return Quote{
		Breakdown:  ComputePrice(sel, catalog),
		Violations: violations,
		Valid:      len(violations) == 0,
	}
}
