package transport

import (
	"errors"
	"net/http"
	"strconv"

	"tillpoint/internal/domain"
	"tillpoint/internal/middleware"
	"tillpoint/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultOrderPageSize = 50
	maxOrderPageSize     = 200
)

// StatsResponse is the dashboard payload: sales aggregates plus the stock
// alert counts and the size of the customer roster.
type StatsResponse struct {
	Sales           *domain.SalesStats `json:"sales"`
	LowStockCount   int                `json:"low_stock_count"`
	OutOfStockCount int                `json:"out_of_stock_count"`
	CustomerCount   int                `json:"customer_count"`
}

// OrderHandler handles HTTP requests for order history and the dashboard
// stats. Orders are write-once, so the handler is read-only against the
// repositories.
type OrderHandler struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	configs   repository.ConfigRepository
	logger    *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	configs repository.ConfigRepository,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		products:  products,
		customers: customers,
		configs:   configs,
		logger:    logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
	r.Get("/api/stats", h.Stats)
}

// List returns committed orders, newest first
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultOrderPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxOrderPageSize {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		offset = parsed
	}

	orders, err := h.orders.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get returns a single committed order with its items
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orders.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Stats returns the dashboard aggregates: today's and all-time sales, the
// low/out-of-stock counts against the configured threshold, and the number
// of registered customers.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sales, err := h.orders.SalesStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to load sales stats", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load sales stats")
		return
	}

	config, err := h.configs.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load store config", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load store config")
		return
	}

	low, out, err := h.products.StockSummary(r.Context(), config.LowStockThreshold)
	if err != nil {
		h.logger.Error("Failed to load stock summary", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load stock summary")
		return
	}

	customerCount, err := h.customers.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to count customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StatsResponse{
		Sales:           sales,
		LowStockCount:   low,
		OutOfStockCount: out,
		CustomerCount:   customerCount,
	})
}
