package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestConfigGetReturnsSeededSingleton(t *testing.T) {
	repo := NewConfigRepository(testDB)

	config, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, config.BusinessName)
	require.NotEmpty(t, config.CurrencySymbol)
	require.True(t, config.TaxRatePercent.Sign() >= 0)
}

func TestConfigUpdateRoundTrip(t *testing.T) {
	repo := NewConfigRepository(testDB)
	ctx := context.Background()

	original, err := repo.Get(ctx)
	require.NoError(t, err)
	defer func() {
		_ = repo.Update(ctx, original)
	}()

	updated := *original
	updated.BusinessName = "Corner Till"
	updated.TaxRatePercent = decimal.RequireFromString("8.25")
	updated.DiscountPercent = decimal.RequireFromString("5.00")
	updated.LowStockThreshold = 3
	updated.InventoryEnabled = false
	updated.ReceiptFooter = "See you tomorrow"
	updated.UpdatedAt = time.Now().UTC()

	require.NoError(t, repo.Update(ctx, &updated))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "Corner Till", got.BusinessName)
	requireDecimalEqual(t, "8.25", got.TaxRatePercent)
	requireDecimalEqual(t, "5.00", got.DiscountPercent)
	require.Equal(t, 3, got.LowStockThreshold)
	require.False(t, got.InventoryEnabled)
	require.Equal(t, "See you tomorrow", got.ReceiptFooter)
}
