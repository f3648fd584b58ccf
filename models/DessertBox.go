package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultQuantity is the box size offered when nothing else was chosen.
const DefaultQuantity = 12

// QuantityChoices lists the box sizes offered by the storefront.
var QuantityChoices = []int{6, 12, 24}

// DessertBox is a finalized configuration. TotalPrice is captured at submit
// time and is never recomputed from the referenced catalog rows.
type DessertBox struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DessertTypeID uint            `gorm:"not null;index" json:"dessert_type_id"`
	FlavorID      uint            `gorm:"not null" json:"flavor_id"`
	PackagingID   uint            `gorm:"not null" json:"packaging_id"`
	DietaryID     uint            `gorm:"not null" json:"dietary_id"`
	ThemeID       uint            `gorm:"not null" json:"theme_id"`
	Quantity      int             `gorm:"not null;default:12" json:"quantity"`
	CustomMessage *string         `gorm:"type:text" json:"custom_message"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Preloaded for display only.
	DessertType *DessertType     `gorm:"foreignKey:DessertTypeID" json:"-"`
	Flavor      *Flavor          `gorm:"foreignKey:FlavorID" json:"-"`
	Packaging   *PackagingOption `gorm:"foreignKey:PackagingID" json:"-"`
	Dietary     *DietaryOption   `gorm:"foreignKey:DietaryID" json:"-"`
	Theme       *Theme           `gorm:"foreignKey:ThemeID" json:"-"`
}

// DisplayNames returns the joined option names, empty where the reference no
// longer resolves.
func (b DessertBox) DisplayNames() (dessertType, flavor, packaging, dietary, theme string) {
	if b.DessertType != nil {
		dessertType = b.DessertType.Name
	}
	if b.Flavor != nil {
		flavor = b.Flavor.Name
	}
	if b.Packaging != nil {
		packaging = b.Packaging.Name
	}
	if b.Dietary != nil {
		dietary = b.Dietary.Name
	}
	if b.Theme != nil {
		theme = b.Theme.Name
	}
	return
}

// Message returns the custom message or an empty string.
func (b DessertBox) Message() string {
	if b.CustomMessage == nil {
		return ""
	}
	return *b.CustomMessage
}
