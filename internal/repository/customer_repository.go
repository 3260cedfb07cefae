package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tillpoint/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
)

// CustomerRepository defines the interface for customer data access.
// ApplyOrderStats is the only write path for the lifetime aggregates
// (total_spend, order_count, loyalty_points); it takes a Querier so the
// checkout coordinator can run it inside its transaction, and Update never
// touches those columns.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	Search(ctx context.Context, query string) ([]*domain.Customer, error)
	Count(ctx context.Context) (int, error)
	ApplyOrderStats(ctx context.Context, q Querier, id uuid.UUID, total decimal.Decimal, loyaltyDelta int) error
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = "id, name, email, phone, address, notes, loyalty_points, total_spend, order_count, created_at, updated_at"

func scanCustomer(row interface{ Scan(...interface{}) error }) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.Address,
		&customer.Notes,
		&customer.LoyaltyPoints,
		&customer.TotalSpend,
		&customer.OrderCount,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// Create inserts a new customer with zeroed lifetime aggregates
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, phone, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.Notes,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// Update updates profile fields only; the lifetime aggregates are writable
// exclusively through ApplyOrderStats.
func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, address = $5, notes = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.Notes,
		customer.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

// Delete removes a customer from the database
func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM customers WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return customer, nil
}

// List retrieves all customers ordered by name
func (r *customerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers ORDER BY name ASC`, customerColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// Search searches for customers by name or email with case-insensitive matching
func (r *customerRepository) Search(ctx context.Context, query string) ([]*domain.Customer, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx)
	}

	searchPattern := "%" + query + "%"
	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY name ASC
	`, customerColumns)

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// Count returns the number of registered customers
func (r *customerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

// ApplyOrderStats increments the customer's lifetime aggregates for one
// committed order. Increment-only: spend and counts are never decremented.
func (r *customerRepository) ApplyOrderStats(ctx context.Context, q Querier, id uuid.UUID, total decimal.Decimal, loyaltyDelta int) error {
	query := `
		UPDATE customers
		SET total_spend = total_spend + $2,
		    order_count = order_count + 1,
		    loyalty_points = loyalty_points + $3,
		    updated_at = now()
		WHERE id = $1
	`

	result, err := q.ExecContext(ctx, query, id, total, loyaltyDelta)
	if err != nil {
		return fmt.Errorf("failed to apply order stats: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

func collectCustomers(rows *sql.Rows) ([]*domain.Customer, error) {
	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}
