package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreConfig is the singleton store configuration record. TaxRatePercent
// and DiscountPercent are percentages (8 means 8%); LoyaltyRatePerUnit is
// the number of loyalty points awarded per whole currency unit spent.
type StoreConfig struct {
	BusinessName       string          `json:"business_name" db:"business_name"`
	CurrencySymbol     string          `json:"currency_symbol" db:"currency_symbol"`
	TaxRatePercent     decimal.Decimal `json:"tax_rate_percent" db:"tax_rate_percent"`
	DiscountPercent    decimal.Decimal `json:"discount_percent" db:"discount_percent"`
	LoyaltyRatePerUnit decimal.Decimal `json:"loyalty_rate_per_unit" db:"loyalty_rate_per_unit"`
	LowStockThreshold  int             `json:"low_stock_threshold" db:"low_stock_threshold"`
	InventoryEnabled   bool            `json:"inventory_enabled" db:"inventory_enabled"`
	CustomersEnabled   bool            `json:"customers_enabled" db:"customers_enabled"`
	LoyaltyEnabled     bool            `json:"loyalty_enabled" db:"loyalty_enabled"`
	ReceiptFooter      string          `json:"receipt_footer" db:"receipt_footer"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}
