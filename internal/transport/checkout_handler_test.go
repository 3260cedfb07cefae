package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tillpoint/internal/cart"
	"tillpoint/internal/domain"
	"tillpoint/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock collaborators for testing

type mockCheckoutService struct {
	lastInput service.CheckoutInput
	result    *domain.Order
	err       error
}

func (m *mockCheckoutService) Checkout(ctx context.Context, input service.CheckoutInput) (*domain.Order, error) {
	m.lastInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockConfigRepository struct {
	config domain.StoreConfig
}

func (m *mockConfigRepository) Get(ctx context.Context) (*domain.StoreConfig, error) {
	config := m.config
	return &config, nil
}

func (m *mockConfigRepository) Update(ctx context.Context, config *domain.StoreConfig) error {
	m.config = *config
	return nil
}

func testStoreConfig() domain.StoreConfig {
	return domain.StoreConfig{
		BusinessName:       "Test Store",
		CurrencySymbol:     "$",
		TaxRatePercent:     decimal.NewFromInt(8),
		DiscountPercent:    decimal.NewFromInt(10),
		LoyaltyRatePerUnit: decimal.NewFromInt(1),
		LowStockThreshold:  5,
		InventoryEnabled:   true,
		CustomersEnabled:   true,
		LoyaltyEnabled:     true,
	}
}

func newCheckoutTestHandler(svc service.CheckoutService) (*CheckoutHandler, *cart.Manager) {
	carts := cart.NewManager()
	configs := &mockConfigRepository{config: testStoreConfig()}
	handler := NewCheckoutHandler(svc, carts, configs, zap.NewNop())
	return handler, carts
}

func seedCart(t *testing.T, carts *cart.Manager, session string) uuid.UUID {
	t.Helper()
	productID := uuid.New()
	require.NoError(t, carts.AddItem(session, productID, "Espresso", decimal.RequireFromString("3.50"), nil))
	return productID
}

func checkoutRequest(t *testing.T, session string, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	return req
}

func TestCheckoutRequiresSessionHeader(t *testing.T) {
	handler, _ := newCheckoutTestHandler(&mockCheckoutService{})

	req := checkoutRequest(t, "", CheckoutRequest{PaymentMethod: "cash"})
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	handler, carts := newCheckoutTestHandler(&mockCheckoutService{})
	seedCart(t, carts, "till-1")

	req := checkoutRequest(t, "till-1", CheckoutRequest{PaymentMethod: "iou"})
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Contains(t, envelope, "error")
}

func TestCheckoutPassesCartSnapshotAndConfig(t *testing.T) {
	svc := &mockCheckoutService{
		result: &domain.Order{ID: uuid.New(), Total: decimal.RequireFromString("3.78")},
	}
	handler, carts := newCheckoutTestHandler(svc)
	productID := seedCart(t, carts, "till-2")

	req := checkoutRequest(t, "till-2", CheckoutRequest{PaymentMethod: "card", Tip: "1.00"})
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.lastInput.Lines, 1)
	require.Equal(t, productID, svc.lastInput.Lines[0].ProductID)
	require.True(t, svc.lastInput.Tip.Equal(decimal.RequireFromString("1.00")))
	require.True(t, svc.lastInput.Config.TaxRatePercent.Equal(decimal.NewFromInt(8)))
	require.Equal(t, "card", svc.lastInput.PaymentMethod)
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	svc := &mockCheckoutService{
		result: &domain.Order{ID: uuid.New()},
	}
	handler, carts := newCheckoutTestHandler(svc)
	seedCart(t, carts, "till-3")

	req := checkoutRequest(t, "till-3", CheckoutRequest{PaymentMethod: "cash"})
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Empty(t, carts.Snapshot("till-3"), "successful checkout must consume the cart")
}

func TestCheckoutInsufficientStockKeepsCart(t *testing.T) {
	productID := uuid.New()
	svc := &mockCheckoutService{
		err: &domain.InsufficientStockError{
			ProductID: productID,
			Name:      "Espresso",
			Requested: 2,
			Available: 1,
		},
	}
	handler, carts := newCheckoutTestHandler(svc)
	seedCart(t, carts, "till-4")

	req := checkoutRequest(t, "till-4", CheckoutRequest{PaymentMethod: "cash"})
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	require.NotEmpty(t, carts.Snapshot("till-4"), "refused checkout must leave the cart intact")

	var envelope struct {
		Error struct {
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, productID.String(), envelope.Error.Details["product_id"])
	require.Equal(t, float64(2), envelope.Error.Details["requested"])
	require.Equal(t, float64(1), envelope.Error.Details["available"])
}

func TestCheckoutEmptyCartIsRejected(t *testing.T) {
	svc := &mockCheckoutService{err: service.ErrEmptyCart}
	handler, _ := newCheckoutTestHandler(svc)

	req := checkoutRequest(t, "till-5", CheckoutRequest{PaymentMethod: "cash"})
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutPersistenceFailureIs500(t *testing.T) {
	svc := &mockCheckoutService{err: &service.PersistenceError{Op: "commit", Err: context.DeadlineExceeded}}
	handler, carts := newCheckoutTestHandler(svc)
	seedCart(t, carts, "till-6")

	req := checkoutRequest(t, "till-6", CheckoutRequest{PaymentMethod: "cash"})
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotEmpty(t, carts.Snapshot("till-6"), "failed checkout must leave the cart intact")
}
