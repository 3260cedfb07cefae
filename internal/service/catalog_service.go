package service

import (
	"context"
	"errors"
	"time"

	"tillpoint/internal/domain"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNameRequired = errors.New("product name is required")
	ErrInvalidPrice        = errors.New("product price must be greater than zero")
	ErrNegativeStock       = errors.New("stock level must not be negative")
)

// ProductInput carries the writable product fields. A nil Stock disables
// inventory tracking for the product.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    *int
	Category string
	SKU      string
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	List(ctx context.Context, query string) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*int, error)
	ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
}

type catalogService struct {
	products repository.ProductRepository
	// adjustDB satisfies repository.Querier for standalone stock
	// adjustments made outside a checkout transaction.
	adjustDB repository.Querier
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(products repository.ProductRepository, db repository.Querier) CatalogService {
	return &catalogService{products: products, adjustDB: db}
}

func (s *catalogService) List(ctx context.Context, query string) ([]*domain.Product, error) {
	return s.products.Search(ctx, query)
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

// Create validates and persists a new product. The category defaults to
// "General" when omitted.
func (s *catalogService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	if input.Category == "" {
		input.Category = domain.DefaultCategory
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      input.Name,
		Price:     input.Price,
		Stock:     input.Stock,
		Category:  input.Category,
		SKU:       input.SKU,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update validates and applies catalog edits to an existing product.
func (s *catalogService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Price = input.Price
	product.Stock = input.Stock
	product.Category = input.Category
	if product.Category == "" {
		product.Category = domain.DefaultCategory
	}
	product.SKU = input.SKU
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

// AdjustStock applies an admin stock adjustment (restock or correction)
// outside any checkout.
func (s *catalogService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*int, error) {
	return s.products.AdjustStock(ctx, s.adjustDB, id, delta)
}

func (s *catalogService) ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	return s.products.ListLowStock(ctx, threshold)
}

func validateProductInput(input ProductInput) error {
	if input.Name == "" {
		return ErrProductNameRequired
	}
	if input.Price.Sign() <= 0 {
		return ErrInvalidPrice
	}
	if input.Stock != nil && *input.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
