package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// InsufficientStockError reports a checkout or stock adjustment that would
// drive a product's recorded inventory below zero.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (%s): requested %d, available %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}
