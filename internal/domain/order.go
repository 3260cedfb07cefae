package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product/quantity pairing in a cart. UnitPrice is copied
// from the product at the moment the line was first added and never changes
// afterwards, so catalog price edits cannot retroactively alter an open cart
// or a completed order.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns UnitPrice multiplied by Quantity, unrounded.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the monetary breakdown of a cart. Every field is rounded
// half-up to two decimal places, and Total is recombined from the rounded
// fields so it can always be re-derived from them.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Tip      decimal.Decimal `json:"tip"`
	Total    decimal.Decimal `json:"total"`
}

// OrderItem is an immutable copy of a cart line persisted with its order.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Position  int             `json:"position" db:"position"`
}

// Order is a committed sale. Orders are write-once: after a successful
// checkout no field is ever mutated.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty" db:"customer_id"`
	IdempotencyKey *uuid.UUID      `json:"idempotency_key,omitempty" db:"idempotency_key"`
	Items          []OrderItem     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount       decimal.Decimal `json:"discount" db:"discount"`
	Tax            decimal.Decimal `json:"tax" db:"tax"`
	Tip            decimal.Decimal `json:"tip" db:"tip"`
	Total          decimal.Decimal `json:"total" db:"total"`
	PaymentMethod  string          `json:"payment_method" db:"payment_method"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Payment methods accepted at checkout.
const (
	PaymentCash  = "cash"
	PaymentCard  = "card"
	PaymentOther = "other"
)

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOther:
		return true
	}
	return false
}
