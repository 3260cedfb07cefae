package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer represents a customer profile. TotalSpend, OrderCount and
// LoyaltyPoints are lifetime aggregates mutated only by committed checkouts;
// they are never decremented and never writable through profile updates.
type Customer struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Email         string          `json:"email,omitempty" db:"email"`
	Phone         string          `json:"phone,omitempty" db:"phone"`
	Address       string          `json:"address,omitempty" db:"address"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
	LoyaltyPoints int             `json:"loyalty_points" db:"loyalty_points"`
	TotalSpend    decimal.Decimal `json:"total_spend" db:"total_spend"`
	OrderCount    int             `json:"order_count" db:"order_count"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
