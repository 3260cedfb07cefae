package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tillpoint/internal/domain"
	"tillpoint/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Read-only stubs: only the methods the stats endpoint touches are
// implemented, anything else panics through the embedded interface.

type stubOrderRepository struct {
	repository.OrderRepository
	stats *domain.SalesStats
	err   error
}

func (s *stubOrderRepository) SalesStats(ctx context.Context) (*domain.SalesStats, error) {
	return s.stats, s.err
}

type stubProductRepository struct {
	repository.ProductRepository
	low, out      int
	lastThreshold int
}

func (s *stubProductRepository) StockSummary(ctx context.Context, threshold int) (int, int, error) {
	s.lastThreshold = threshold
	return s.low, s.out, nil
}

type stubCustomerRepository struct {
	repository.CustomerRepository
	count int
}

func (s *stubCustomerRepository) Count(ctx context.Context) (int, error) {
	return s.count, nil
}

func TestStatsCombinesSalesStockAndCustomers(t *testing.T) {
	orders := &stubOrderRepository{
		stats: &domain.SalesStats{
			TodaySales:    decimal.RequireFromString("19.44"),
			TodayOrders:   1,
			AllTimeSales:  decimal.RequireFromString("103.20"),
			AllTimeOrders: 7,
		},
	}
	products := &stubProductRepository{low: 3, out: 2}
	customers := &stubCustomerRepository{count: 11}
	configs := &mockConfigRepository{config: testStoreConfig()}
	handler := NewOrderHandler(orders, products, customers, configs, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, 3, got.LowStockCount)
	require.Equal(t, 2, got.OutOfStockCount)
	require.Equal(t, 11, got.CustomerCount)
	require.NotNil(t, got.Sales)
	require.Equal(t, 7, got.Sales.AllTimeOrders)
	require.True(t, got.Sales.TodaySales.Equal(decimal.RequireFromString("19.44")))

	require.Equal(t, testStoreConfig().LowStockThreshold, products.lastThreshold,
		"stock summary must use the configured threshold")
}

func TestStatsSalesFailureIs500(t *testing.T) {
	orders := &stubOrderRepository{err: context.DeadlineExceeded}
	handler := NewOrderHandler(orders, &stubProductRepository{}, &stubCustomerRepository{},
		&mockConfigRepository{config: testStoreConfig()}, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
