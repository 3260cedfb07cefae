package transport

import (
	"errors"
	"net/http"

	"tillpoint/internal/cart"
	"tillpoint/internal/domain"
	"tillpoint/internal/middleware"
	"tillpoint/internal/pricing"
	"tillpoint/internal/repository"
	"tillpoint/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// sessionHeader identifies the register session a cart belongs to.
const sessionHeader = "X-Session-ID"

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// CartResponse represents the current cart contents
type CartResponse struct {
	Items []domain.CartLine `json:"items"`
	Count int               `json:"count"`
}

// CartHandler handles HTTP requests for cart operations. Carts live in
// memory, scoped per session; nothing here touches the database except
// product lookups on add.
type CartHandler struct {
	carts   *cart.Manager
	catalog service.CatalogService
	configs repository.ConfigRepository
	logger  *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cart.Manager, catalog service.CatalogService, configs repository.ConfigRepository, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		configs: configs,
		logger:  logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Get("/totals", h.Totals)
		r.Post("/items", h.AddItem)
		r.Post("/items/{productID}/decrement", h.DecrementItem)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// Get returns the cart contents for the caller's session
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	lines := h.carts.Snapshot(session)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Items: lines, Count: len(lines)})
}

// AddItem adds one unit of a product to the cart. The unit price is
// snapshotted from the catalog on the first add; when inventory tracking is
// on, the cart refuses quantities beyond the recorded stock.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalog.Get(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to look up product for cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	config, err := h.configs.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load store config", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	var maxAvailable *int
	if config.InventoryEnabled {
		maxAvailable = product.Stock
	}

	if err := h.carts.AddItem(session, product.ID, product.Name, product.Price, maxAvailable); err != nil {
		if errors.Is(err, cart.ErrStockLimitReached) {
			middleware.RespondWithErrorDetails(w, http.StatusConflict, "stock limit reached", map[string]interface{}{
				"product_id": product.ID.String(),
				"available":  product.Stock,
			})
			return
		}
		h.logger.Error("Failed to add cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	lines := h.carts.Snapshot(session)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Items: lines, Count: len(lines)})
}

// DecrementItem removes one unit of a product; the line disappears at zero
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.carts.DecrementItem(session, productID); err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart line not found")
			return
		}
		h.logger.Error("Failed to decrement cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to decrement item")
		return
	}

	lines := h.carts.Snapshot(session)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Items: lines, Count: len(lines)})
}

// RemoveItem drops a cart line regardless of its quantity
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.carts.RemoveItem(session, productID); err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart line not found")
			return
		}
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	lines := h.carts.Snapshot(session)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Items: lines, Count: len(lines)})
}

// Clear empties the cart for the caller's session
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	h.carts.Clear(session)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Items: []domain.CartLine{}, Count: 0})
}

// Totals prices the current cart against the store configuration. An
// optional tip query parameter is added on top, untaxed and undiscounted.
func (h *CartHandler) Totals(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	tip := decimal.Zero
	if raw := r.URL.Query().Get("tip"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.Sign() < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid tip")
			return
		}
		tip = parsed
	}

	config, err := h.configs.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load store config", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute totals")
		return
	}

	lines := h.carts.Snapshot(session)
	totals := pricing.Compute(lines, config.DiscountPercent, config.TaxRatePercent, tip)

	middleware.RespondWithJSON(w, http.StatusOK, totals)
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	session := r.Header.Get(sessionHeader)
	if session == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return "", false
	}
	return session, true
}
