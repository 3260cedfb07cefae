package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tillpoint/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access. Orders are
// write-once: Create is the only mutation, and it must run inside the
// checkout transaction via the supplied Querier.
type OrderRepository interface {
	Create(ctx context.Context, q Querier, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	SalesStats(ctx context.Context) (*domain.SalesStats, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = "id, customer_id, idempotency_key, subtotal, discount, tax, tip, total, payment_method, created_at"

// Create persists the order record and its immutable line-item copies.
func (r *orderRepository) Create(ctx context.Context, q Querier, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, idempotency_key, subtotal, discount, tax, tip, total, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.ExecContext(
		ctx,
		query,
		order.ID,
		order.CustomerID,
		order.IdempotencyKey,
		order.Subtotal,
		order.Discount,
		order.Tax,
		order.Tip,
		order.Total,
		order.PaymentMethod,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, unit_price, quantity, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range order.Items {
		_, err := q.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
			item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// FindByID retrieves an order and its line items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return r.findOne(ctx, query, id)
}

// FindByIdempotencyKey retrieves the order committed under the given
// client-supplied idempotency key, if any.
func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE idempotency_key = $1`, orderColumns)
	return r.findOne(ctx, query, key)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// List retrieves committed orders newest-first
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, orderColumns)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// SalesStats aggregates committed orders for the dashboard in one query
func (r *orderRepository) SalesStats(ctx context.Context) (*domain.SalesStats, error) {
	query := `
		SELECT
			COALESCE(SUM(total) FILTER (WHERE created_at >= date_trunc('day', now())), 0),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
			COALESCE(SUM(total), 0),
			COUNT(*)
		FROM orders
	`

	stats := &domain.SalesStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TodaySales,
		&stats.TodayOrders,
		&stats.AllTimeSales,
		&stats.AllTimeOrders,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales stats: %w", err)
	}

	return stats, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, product_id, name, unit_price, quantity, position
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		item := domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	order.Items = items
	return nil
}

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	order := &domain.Order{}
	var customerID, idempotencyKey uuid.NullUUID
	err := row.Scan(
		&order.ID,
		&customerID,
		&idempotencyKey,
		&order.Subtotal,
		&order.Discount,
		&order.Tax,
		&order.Tip,
		&order.Total,
		&order.PaymentMethod,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		order.CustomerID = &customerID.UUID
	}
	if idempotencyKey.Valid {
		order.IdempotencyKey = &idempotencyKey.UUID
	}
	return order, nil
}
