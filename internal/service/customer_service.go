package service

import (
	"context"
	"errors"
	"time"

	"tillpoint/internal/domain"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCustomerNameRequired = errors.New("customer name is required")
)

// CustomerInput carries the writable customer profile fields. The lifetime
// aggregates (spend, order count, loyalty points) are not part of it; they
// change only through committed checkouts.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// CustomerService defines the interface for customer business logic
type CustomerService interface {
	List(ctx context.Context, query string) ([]*domain.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	Create(ctx context.Context, input CustomerInput) (*domain.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	customers repository.CustomerRepository
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(customers repository.CustomerRepository) CustomerService {
	return &customerService{customers: customers}
}

func (s *customerService) List(ctx context.Context, query string) ([]*domain.Customer, error) {
	return s.customers.Search(ctx, query)
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *customerService) Create(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	if input.Name == "" {
		return nil, ErrCustomerNameRequired
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// Update applies profile edits; stat fields are read-only from here.
func (s *customerService) Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error) {
	if input.Name == "" {
		return nil, ErrCustomerNameRequired
	}

	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.Notes = input.Notes
	customer.UpdatedAt = time.Now().UTC()

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.customers.Delete(ctx, id)
}
