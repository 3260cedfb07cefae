package transport

import (
	"net/http"
	"time"

	"tillpoint/internal/domain"
	"tillpoint/internal/middleware"
	"tillpoint/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConfigRequest represents the store configuration update payload. Rates
// travel as decimal strings like prices do.
type ConfigRequest struct {
	BusinessName       string `json:"business_name" validate:"required"`
	CurrencySymbol     string `json:"currency_symbol" validate:"required"`
	TaxRatePercent     string `json:"tax_rate_percent" validate:"required"`
	DiscountPercent    string `json:"discount_percent" validate:"required"`
	LoyaltyRatePerUnit string `json:"loyalty_rate_per_unit" validate:"required"`
	LowStockThreshold  int    `json:"low_stock_threshold" validate:"gte=1"`
	InventoryEnabled   bool   `json:"inventory_enabled"`
	CustomersEnabled   bool   `json:"customers_enabled"`
	LoyaltyEnabled     bool   `json:"loyalty_enabled"`
	ReceiptFooter      string `json:"receipt_footer"`
}

// ConfigHandler handles HTTP requests for the store configuration
type ConfigHandler struct {
	configs repository.ConfigRepository
	logger  *zap.Logger
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(configs repository.ConfigRepository, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		configs: configs,
		logger:  logger,
	}
}

// RegisterRoutes registers all config routes
func (h *ConfigHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/config", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
	})
}

// Get returns the store configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	config, err := h.configs.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load store config", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load store config")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, config)
}

// Update replaces the store configuration. Changes apply to future
// checkouts only; committed orders keep the rates they were priced with.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Config validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	taxRate, err := decimal.NewFromString(req.TaxRatePercent)
	if err != nil || taxRate.Sign() < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tax rate")
		return
	}

	discount, err := decimal.NewFromString(req.DiscountPercent)
	if err != nil || discount.Sign() < 0 || discount.GreaterThan(decimal.NewFromInt(100)) {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid discount percent")
		return
	}

	loyaltyRate, err := decimal.NewFromString(req.LoyaltyRatePerUnit)
	if err != nil || loyaltyRate.Sign() < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid loyalty rate")
		return
	}

	config := &domain.StoreConfig{
		BusinessName:       req.BusinessName,
		CurrencySymbol:     req.CurrencySymbol,
		TaxRatePercent:     taxRate,
		DiscountPercent:    discount,
		LoyaltyRatePerUnit: loyaltyRate,
		LowStockThreshold:  req.LowStockThreshold,
		InventoryEnabled:   req.InventoryEnabled,
		CustomersEnabled:   req.CustomersEnabled,
		LoyaltyEnabled:     req.LoyaltyEnabled,
		ReceiptFooter:      req.ReceiptFooter,
		UpdatedAt:          time.Now().UTC(),
	}

	if err := h.configs.Update(r.Context(), config); err != nil {
		h.logger.Error("Failed to update store config", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update store config")
		return
	}

	h.logger.Info("Store config updated", zap.String("business_name", config.BusinessName))
	middleware.RespondWithJSON(w, http.StatusOK, config)
}
