// Package cart implements the session-scoped shopping cart. A Cart is
// single-writer and carries no locking of its own; Manager serializes the
// HTTP requests that share a session.
package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tillpoint/internal/domain"
)

var (
	// ErrStockLimitReached signals that adding one more unit would exceed
	// the available stock. The cart is left unchanged.
	ErrStockLimitReached = errors.New("stock limit reached")

	// ErrLineNotFound signals that the cart has no line for the product.
	ErrLineNotFound = errors.New("cart line not found")
)

// Cart holds at most one line per product; adding the same product again
// merges into the existing line.
type Cart struct {
	lines map[uuid.UUID]*domain.CartLine
	order []uuid.UUID // insertion order, for stable snapshots
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{lines: make(map[uuid.UUID]*domain.CartLine)}
}

// AddItem adds one unit of the product. The first add snapshots the unit
// price; later adds increment the quantity and keep the original snapshot.
// When maxAvailable is non-nil (inventory tracked) and the new quantity
// would exceed it, the cart is left unchanged and ErrStockLimitReached is
// returned.
func (c *Cart) AddItem(productID uuid.UUID, name string, unitPrice decimal.Decimal, maxAvailable *int) error {
	if line, ok := c.lines[productID]; ok {
		if maxAvailable != nil && line.Quantity+1 > *maxAvailable {
			return ErrStockLimitReached
		}
		line.Quantity++
		return nil
	}

	if maxAvailable != nil && *maxAvailable < 1 {
		return ErrStockLimitReached
	}

	c.lines[productID] = &domain.CartLine{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  1,
	}
	c.order = append(c.order, productID)
	return nil
}

// DecrementItem removes one unit of the product, dropping the line entirely
// when its quantity reaches zero.
func (c *Cart) DecrementItem(productID uuid.UUID) error {
	line, ok := c.lines[productID]
	if !ok {
		return ErrLineNotFound
	}
	line.Quantity--
	if line.Quantity <= 0 {
		c.removeLine(productID)
	}
	return nil
}

// RemoveItem drops the product's line regardless of quantity.
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	if _, ok := c.lines[productID]; !ok {
		return ErrLineNotFound
	}
	c.removeLine(productID)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = make(map[uuid.UUID]*domain.CartLine)
	c.order = nil
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Snapshot returns an immutable copy of the cart lines in insertion order.
// The live cart may keep mutating after a snapshot is taken; checkout must
// operate only on the snapshot.
func (c *Cart) Snapshot() []domain.CartLine {
	snapshot := make([]domain.CartLine, 0, len(c.lines))
	for _, id := range c.order {
		if line, ok := c.lines[id]; ok {
			snapshot = append(snapshot, *line)
		}
	}
	return snapshot
}

func (c *Cart) removeLine(productID uuid.UUID) {
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
