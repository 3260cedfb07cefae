package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tillpoint/internal/domain"
)

// Manager owns the session-to-cart mapping. Individual carts are
// single-writer; the manager's lock is what makes "one writer" true when
// the writer is a stream of HTTP requests sharing a session id. Carts live
// for the lifetime of the process.
type Manager struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{carts: make(map[string]*Cart)}
}

func (m *Manager) cart(sessionID string) *Cart {
	c, ok := m.carts[sessionID]
	if !ok {
		c = New()
		m.carts[sessionID] = c
	}
	return c
}

// AddItem adds one unit of the product to the session's cart.
func (m *Manager) AddItem(sessionID string, productID uuid.UUID, name string, unitPrice decimal.Decimal, maxAvailable *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart(sessionID).AddItem(productID, name, unitPrice, maxAvailable)
}

// DecrementItem removes one unit from the session's cart.
func (m *Manager) DecrementItem(sessionID string, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart(sessionID).DecrementItem(productID)
}

// RemoveItem drops the product's line from the session's cart.
func (m *Manager) RemoveItem(sessionID string, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart(sessionID).RemoveItem(productID)
}

// Clear empties the session's cart.
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart(sessionID).Clear()
}

// Snapshot returns an immutable copy of the session's cart lines.
func (m *Manager) Snapshot(sessionID string) []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart(sessionID).Snapshot()
}
