package transport

import (
	"errors"
	"net/http"

	"tillpoint/internal/cart"
	"tillpoint/internal/domain"
	"tillpoint/internal/middleware"
	"tillpoint/internal/repository"
	"tillpoint/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutRequest represents the checkout payload. The cart itself comes
// from the caller's session; only payment details travel in the body. The
// idempotency key, when supplied, makes resubmitting the same checkout safe.
type CheckoutRequest struct {
	CustomerID     string `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	PaymentMethod  string `json:"payment_method" validate:"required,oneof=cash card other"`
	Tip            string `json:"tip,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty" validate:"omitempty,uuid"`
}

// CheckoutHandler handles HTTP requests for checkout
type CheckoutHandler struct {
	checkout service.CheckoutService
	carts    *cart.Manager
	configs  repository.ConfigRepository
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout service.CheckoutService, carts *cart.Manager, configs repository.ConfigRepository, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		carts:    carts,
		configs:  configs,
		logger:   logger,
	}
}

// RegisterRoutes registers the checkout route. The rate limiter guards
// against runaway clients hammering the commit path.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, rateLimiter func(http.Handler) http.Handler) {
	r.Route("/api/checkout", func(r chi.Router) {
		r.Use(rateLimiter)
		r.Post("/", h.Checkout)
	})
}

// Checkout converts the session's cart into a committed order and clears
// the cart on success. Insufficient stock leaves both the cart and the
// database untouched so the caller can amend and resubmit.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	session := r.Header.Get(sessionHeader)
	if session == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tip := decimal.Zero
	if req.Tip != "" {
		parsed, err := decimal.NewFromString(req.Tip)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid tip format")
			return
		}
		tip = parsed
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
			return
		}
		customerID = &id
	}

	var idempotencyKey *uuid.UUID
	if req.IdempotencyKey != "" {
		key, err := uuid.Parse(req.IdempotencyKey)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid idempotency key")
			return
		}
		idempotencyKey = &key
	}

	config, err := h.configs.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load store config", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load store config")
		return
	}

	input := service.CheckoutInput{
		Lines:          h.carts.Snapshot(session),
		Config:         *config,
		CustomerID:     customerID,
		PaymentMethod:  req.PaymentMethod,
		Tip:            tip,
		IdempotencyKey: idempotencyKey,
	}

	order, err := h.checkout.Checkout(r.Context(), input)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	// The cart is only consumed once the order is durable.
	h.carts.Clear(session)

	h.logger.Info("Checkout completed",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", session),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientStockError
	var persistence *service.PersistenceError

	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrNegativeTip),
		errors.Is(err, service.ErrCustomersDisabled):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficient):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, "insufficient stock", map[string]interface{}{
			"product_id": insufficient.ProductID.String(),
			"name":       insufficient.Name,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrCustomerNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
	case errors.As(err, &persistence):
		h.logger.Error("Checkout persistence failure", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "checkout failed, no charge was made")
	default:
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "checkout failed")
	}
}
