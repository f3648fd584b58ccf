package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DessertType is the base product of a box. BasePrice is the per-piece floor
// every other option adds to.
type DessertType struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Flavor struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	PriceModifier decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_modifier"`
	IsPremium     bool            `gorm:"not null;default:false" json:"is_premium"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PackagingOption struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	PriceModifier decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_modifier"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

type DietaryOption struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	PriceModifier decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_modifier"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Theme struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	PriceModifier decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_modifier"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}
