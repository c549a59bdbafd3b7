package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the storefront catalogue.
type Product struct {
	ID            int64            `json:"id" db:"id"`
	SKU           string           `json:"sku" db:"sku"`
	Title         string           `json:"title" db:"title"`
	Slug          string           `json:"slug" db:"slug"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty" db:"discount_price"`
	Stock         int              `json:"stock" db:"stock"`
	IsActive      bool             `json:"isActive" db:"is_active"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
}

// UnitPrice returns the price charged per unit at checkout: the discount
// price when one is set, otherwise the list price.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// ProductImport is a catalogue record read by the importer.
type ProductImport struct {
	SKU           string           `json:"sku"`
	Title         string           `json:"title"`
	Slug          string           `json:"slug"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Stock         int              `json:"stock"`
	IsActive      *bool            `json:"isActive,omitempty"`
}
