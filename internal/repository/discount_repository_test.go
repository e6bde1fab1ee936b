package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDiscounts(t *testing.T, repo DiscountRepository, discounts []model.Discount) {
	ctx := context.Background()
	for i := range discounts {
		require.NoError(t, repo.Create(ctx, &discounts[i]))
	}
}

func TestDiscountRepository_ListAutomatic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDiscountRepository(pool, zerolog.Nop())
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	seedDiscounts(t, repo, []model.Discount{
		{ID: "d1", Wallet: "0xmerchant", Type: model.DiscountPercentage, AppliesTo: model.AppliesToCollection, AppliesToIDs: []string{"drinks"}, Value: decimal.RequireFromString("12.5"), StartDate: start, EndDate: &end, Status: model.DiscountActive},
		{ID: "d2", Wallet: "0xmerchant", Type: model.DiscountBuyXGetY, BuyQuantity: 2, GetQuantity: 1, StartDate: start, Status: model.DiscountInactive},
		{ID: "c1", Wallet: "0xmerchant", Code: "SAVE10", Type: model.DiscountPercentage, Value: decimal.NewFromInt(10), StartDate: start, Status: model.DiscountActive},
		{ID: "d3", Wallet: "0xother", Type: model.DiscountFixedAmount, Value: decimal.NewFromInt(50), StartDate: start, Status: model.DiscountActive},
	})

	discounts, err := repo.ListAutomatic(context.Background(), "0xmerchant")
	require.NoError(t, err)
	require.Len(t, discounts, 2)

	assert.Equal(t, "d1", discounts[0].ID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(discounts[0].Value))
	assert.Equal(t, []string{"drinks"}, discounts[0].AppliesToIDs)
	require.NotNil(t, discounts[0].EndDate)
	assert.True(t, end.Equal(*discounts[0].EndDate))

	assert.Equal(t, "d2", discounts[1].ID)
	assert.Equal(t, 2, discounts[1].BuyQuantity)
	assert.Equal(t, model.DiscountInactive, discounts[1].Status)
	assert.Nil(t, discounts[1].EndDate)
	assert.Equal(t, model.AppliesToAll, discounts[1].AppliesTo)
}

func TestDiscountRepository_GetByCode(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDiscountRepository(pool, zerolog.Nop())
	seedDiscounts(t, repo, []model.Discount{
		{ID: "c1", Wallet: "0xmerchant", Code: "SAVE10", Type: model.DiscountPercentage, Value: decimal.NewFromInt(10), StartDate: time.Now(), Status: model.DiscountActive},
	})

	tests := []struct {
		name   string
		wallet string
		code   string
		wantID string
	}{
		{name: "Exact code", wallet: "0xmerchant", code: "SAVE10", wantID: "c1"},
		{name: "Case insensitive", wallet: "0xmerchant", code: "save10", wantID: "c1"},
		{name: "Other wallet", wallet: "0xother", code: "SAVE10"},
		{name: "Unknown code", wallet: "0xmerchant", code: "NOPE"},
		{name: "Empty code", wallet: "0xmerchant", code: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := repo.GetByCode(context.Background(), tt.wallet, tt.code)
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, d)
				return
			}
			require.NotNil(t, d)
			assert.Equal(t, tt.wantID, d.ID)
		})
	}
}

func TestDiscountRepository_IncrementUsageRespectsLimit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDiscountRepository(pool, zerolog.Nop())
	seedDiscounts(t, repo, []model.Discount{
		{ID: "c1", Wallet: "0xmerchant", Code: "ONCE", Type: model.DiscountFixedAmount, Value: decimal.NewFromInt(100), UsageLimit: 3, StartDate: time.Now(), Status: model.DiscountActive},
	})

	ctx := context.Background()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.IncrementUsage(ctx, "c1")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, applied)

	d, err := repo.GetByCode(ctx, "0xmerchant", "ONCE")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, int64(3), d.UsedCount)
	assert.False(t, d.IsActiveAt(time.Now()))
}

func TestDiscountRepository_IncrementUsageUnknownID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDiscountRepository(pool, zerolog.Nop())

	ok, err := repo.IncrementUsage(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
