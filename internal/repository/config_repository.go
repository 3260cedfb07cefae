package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tillpoint/internal/domain"
)

// ConfigRepository manages the singleton store configuration row, seeded by
// migration so Get never observes an empty table.
type ConfigRepository interface {
	Get(ctx context.Context) (*domain.StoreConfig, error)
	Update(ctx context.Context, config *domain.StoreConfig) error
}

type configRepository struct {
	db *sql.DB
}

// NewConfigRepository creates a new instance of ConfigRepository
func NewConfigRepository(db *sql.DB) ConfigRepository {
	return &configRepository{db: db}
}

// Get retrieves the store configuration
func (r *configRepository) Get(ctx context.Context) (*domain.StoreConfig, error) {
	query := `
		SELECT business_name, currency_symbol, tax_rate_percent, discount_percent,
		       loyalty_rate_per_unit, low_stock_threshold, inventory_enabled,
		       customers_enabled, loyalty_enabled, receipt_footer, updated_at
		FROM store_config
		WHERE id = 1
	`

	config := &domain.StoreConfig{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&config.BusinessName,
		&config.CurrencySymbol,
		&config.TaxRatePercent,
		&config.DiscountPercent,
		&config.LoyaltyRatePerUnit,
		&config.LowStockThreshold,
		&config.InventoryEnabled,
		&config.CustomersEnabled,
		&config.LoyaltyEnabled,
		&config.ReceiptFooter,
		&config.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load store config: %w", err)
	}

	return config, nil
}

// Update replaces the store configuration
func (r *configRepository) Update(ctx context.Context, config *domain.StoreConfig) error {
	query := `
		UPDATE store_config
		SET business_name = $1, currency_symbol = $2, tax_rate_percent = $3,
		    discount_percent = $4, loyalty_rate_per_unit = $5, low_stock_threshold = $6,
		    inventory_enabled = $7, customers_enabled = $8, loyalty_enabled = $9,
		    receipt_footer = $10, updated_at = $11
		WHERE id = 1
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		config.BusinessName,
		config.CurrencySymbol,
		config.TaxRatePercent,
		config.DiscountPercent,
		config.LoyaltyRatePerUnit,
		config.LowStockThreshold,
		config.InventoryEnabled,
		config.CustomersEnabled,
		config.LoyaltyEnabled,
		config.ReceiptFooter,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update store config: %w", err)
	}

	return nil
}
