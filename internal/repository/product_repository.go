package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tillpoint/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for catalog data access.
// AdjustStock takes a Querier so the checkout coordinator can run it inside
// its transaction; it is the only sanctioned way stock changes outside
// direct catalog edits.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)
	ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
	StockSummary(ctx context.Context, threshold int) (low, out int, err error)
	AdjustStock(ctx context.Context, q Querier, id uuid.UUID, delta int) (*int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, price, stock, category, sku, created_at, updated_at"

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var stock sql.NullInt32
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&stock,
		&product.Category,
		&product.SKU,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if stock.Valid {
		level := int(stock.Int32)
		product.Stock = &level
	}
	return product, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, price, stock, category, sku, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		nullableStock(product.Stock),
		product.Category,
		product.SKU,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, stock = $4, category = $5, sku = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		nullableStock(product.Stock),
		product.Category,
		product.SKU,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves all products ordered by name
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY name ASC`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Search searches for products by name or category with case-insensitive matching
func (r *productRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx)
	}

	searchPattern := "%" + query + "%"
	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE name ILIKE $1 OR category ILIKE $1
		ORDER BY name ASC
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListLowStock retrieves tracked products at or below the given stock level.
// Used by the dashboard for restock alerts; display-only, never enforced.
func (r *productRepository) ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE stock IS NOT NULL AND stock <= $1
		ORDER BY stock ASC, name ASC
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// StockSummary counts tracked products that are low on stock (0 < stock <=
// threshold) or out of stock entirely.
func (r *productRepository) StockSummary(ctx context.Context, threshold int) (low, out int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE stock > 0 AND stock <= $1),
			COUNT(*) FILTER (WHERE stock <= 0)
		FROM products
		WHERE stock IS NOT NULL
	`

	if err := r.db.QueryRowContext(ctx, query, threshold).Scan(&low, &out); err != nil {
		return 0, 0, fmt.Errorf("failed to summarize stock: %w", err)
	}

	return low, out, nil
}

// AdjustStock changes a product's stock level by delta (negative to
// decrement) and returns the new level, or nil when the product is
// untracked. The read of current stock and the write of the new stock are a
// single conditional UPDATE, so concurrent adjustments on the same product
// serialize on the row lock and the level can never go below zero.
func (r *productRepository) AdjustStock(ctx context.Context, q Querier, id uuid.UUID, delta int) (*int, error) {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND (stock IS NULL OR stock + $2 >= 0)
		RETURNING stock
	`

	var stock sql.NullInt32
	err := q.QueryRowContext(ctx, query, id, delta).Scan(&stock)
	if err == nil {
		if !stock.Valid {
			return nil, nil
		}
		level := int(stock.Int32)
		return &level, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	// Either the product does not exist or the adjustment would have made
	// stock negative; re-read to tell the two apart.
	var name string
	var available sql.NullInt32
	err = q.QueryRowContext(ctx, `SELECT name, stock FROM products WHERE id = $1`, id).Scan(&name, &available)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stock after rejected adjustment: %w", err)
	}

	return nil, &domain.InsufficientStockError{
		ProductID: id,
		Name:      name,
		Requested: -delta,
		Available: int(available.Int32),
	}
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func nullableStock(stock *int) interface{} {
	if stock == nil {
		return nil
	}
	return *stock
}
