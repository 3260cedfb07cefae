package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "General"

// Product represents an item in the store catalog. Stock is nil when
// inventory is not tracked for the product, in which case availability is
// treated as unbounded.
type Product struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     *int            `json:"stock,omitempty" db:"stock"`
	Category  string          `json:"category" db:"category"`
	SKU       string          `json:"sku,omitempty" db:"sku"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Tracked reports whether inventory is tracked for this product.
func (p *Product) Tracked() bool {
	return p.Stock != nil
}
