package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tillpoint/internal/domain"
	"tillpoint/internal/pricing"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidQuantity      = errors.New("cart line quantity must be at least 1")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrNegativeTip          = errors.New("tip must not be negative")
	ErrCustomersDisabled    = errors.New("customer tracking is disabled")
)

// pgUniqueViolation is the Postgres error code for unique constraint
// violations, raised when two checkouts race on one idempotency key.
const pgUniqueViolation = "23505"

// PersistenceError reports that the underlying storage failed to commit a
// checkout. The transaction was rolled back; no partial effect is
// observable. The coordinator never retries; retry policy belongs to the
// caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CheckoutInput is the immutable input to one checkout attempt: a cart
// snapshot, the store configuration at submit time, and the caller's
// payment details. IdempotencyKey, when set, makes resubmission safe: the
// same key always yields the same committed order.
type CheckoutInput struct {
	Lines          []domain.CartLine
	Config         domain.StoreConfig
	CustomerID     *uuid.UUID
	PaymentMethod  string
	Tip            decimal.Decimal
	IdempotencyKey *uuid.UUID
}

// CheckoutService converts a cart snapshot into a durable order. Stock
// validation, order persistence, inventory decrements and customer stat
// updates happen in one atomic unit: either the full order commits or
// nothing changes.
type CheckoutService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error)
}

type checkoutService struct {
	db        *sql.DB
	products  repository.ProductRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	logger    *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	db *sql.DB,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		db:        db,
		products:  products,
		customers: customers,
		orders:    orders,
		logger:    logger,
	}
}

// Checkout validates the snapshot, computes totals, and commits the order.
// Validation failures and insufficient stock are reported to the caller for
// correction and are never retried here.
func (s *checkoutService) Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	// A replayed idempotency key returns the already-committed order with
	// no further side effects.
	if input.IdempotencyKey != nil {
		existing, err := s.orders.FindByIdempotencyKey(ctx, *input.IdempotencyKey)
		if err == nil {
			s.logger.Info("Checkout replayed via idempotency key",
				zap.String("order_id", existing.ID.String()),
				zap.String("idempotency_key", input.IdempotencyKey.String()),
			)
			return existing, nil
		}
		if err != repository.ErrOrderNotFound {
			return nil, &PersistenceError{Op: "idempotency lookup", Err: err}
		}
	}

	// A reference to a customer that does not exist is a caller mistake,
	// reported as such before any write happens. The transaction below
	// re-checks it, so a customer deleted in the gap still cannot slip a
	// dangling reference into the order.
	if input.CustomerID != nil {
		if _, err := s.customers.FindByID(ctx, *input.CustomerID); err != nil {
			if err == repository.ErrCustomerNotFound {
				return nil, err
			}
			return nil, &PersistenceError{Op: "customer lookup", Err: err}
		}
	}

	totals := pricing.Compute(input.Lines, input.Config.DiscountPercent, input.Config.TaxRatePercent, input.Tip)
	order := buildOrder(input, totals)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &PersistenceError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback()

	// The conditional stock decrement is both the validation read and the
	// inventory write: one statement per line, serialized on the row lock,
	// so two checkouts racing for the last unit cannot both pass. A failed
	// line rolls back every earlier decrement in this cart.
	if input.Config.InventoryEnabled {
		for _, line := range input.Lines {
			if _, err := s.products.AdjustStock(ctx, tx, line.ProductID, -line.Quantity); err != nil {
				var insufficient *domain.InsufficientStockError
				if errors.As(err, &insufficient) || err == repository.ErrProductNotFound {
					return nil, err
				}
				return nil, &PersistenceError{Op: "stock decrement", Err: err}
			}
		}
	}

	// The stats update runs before the order insert: its row match is the
	// transactional existence check for the referenced customer, and the
	// row lock it takes keeps the customer pinned until commit, so the
	// order's foreign key cannot dangle. A rollback on the insert path
	// undoes the increments with everything else.
	if input.CustomerID != nil {
		loyaltyDelta := 0
		if input.Config.LoyaltyEnabled {
			loyaltyDelta = pricing.LoyaltyPoints(totals.Total, input.Config.LoyaltyRatePerUnit)
		}
		if err := s.customers.ApplyOrderStats(ctx, tx, *input.CustomerID, totals.Total, loyaltyDelta); err != nil {
			if err == repository.ErrCustomerNotFound {
				return nil, err
			}
			return nil, &PersistenceError{Op: "customer stats", Err: err}
		}
	}

	if err := s.orders.Create(ctx, tx, order); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && input.IdempotencyKey != nil {
			// Lost the race against a concurrent submission with the same
			// key; the winner's order is the canonical result.
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				return nil, &PersistenceError{Op: "rollback after duplicate", Err: rbErr}
			}
			existing, findErr := s.orders.FindByIdempotencyKey(ctx, *input.IdempotencyKey)
			if findErr != nil {
				return nil, &PersistenceError{Op: "duplicate resolution", Err: findErr}
			}
			return existing, nil
		}
		return nil, &PersistenceError{Op: "order insert", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &PersistenceError{Op: "commit", Err: err}
	}

	s.logger.Info("Checkout committed",
		zap.String("order_id", order.ID.String()),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Total.String()),
	)

	return order, nil
}

func (s *checkoutService) validate(input CheckoutInput) error {
	if len(input.Lines) == 0 {
		return ErrEmptyCart
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return ErrInvalidQuantity
		}
	}
	if !domain.ValidPaymentMethod(input.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	if input.Tip.Sign() < 0 {
		return ErrNegativeTip
	}
	if input.CustomerID != nil && !input.Config.CustomersEnabled {
		return ErrCustomersDisabled
	}
	return nil
}

// buildOrder assembles the write-once order record. The id is a random
// 128-bit UUID, never derived from the clock, so rapid successive checkouts
// cannot collide.
func buildOrder(input CheckoutInput, totals domain.Totals) *domain.Order {
	order := &domain.Order{
		ID:             uuid.New(),
		CustomerID:     input.CustomerID,
		IdempotencyKey: input.IdempotencyKey,
		Subtotal:       totals.Subtotal,
		Discount:       totals.Discount,
		Tax:            totals.Tax,
		Tip:            totals.Tip,
		Total:          totals.Total,
		PaymentMethod:  input.PaymentMethod,
		CreatedAt:      time.Now().UTC(),
	}

	order.Items = make([]domain.OrderItem, 0, len(input.Lines))
	for i, line := range input.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Position:  i,
		})
	}

	return order
}
