package repository

import (
	"context"
	"testing"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantConfigRepository_SaveAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTenantConfigRepository(pool, zerolog.Nop())
	ctx := context.Background()

	base := decimal.RequireFromString("0.75")
	cfg := &model.TenantConfig{
		Wallet:             "0xmerchant",
		BrandKey:           "cafe",
		SplitAddress:       "0x1111111111111111111111111111111111111111",
		Split:              &model.FeeSplitConfig{PlatformBps: 12000, PartnerBps: -5},
		BasePlatformFeePct: &base,
		ProcessingFeePct:   decimal.RequireFromString("0.25"),
		Tax: model.TaxConfig{
			DefaultJurisdictionCode: "US-CA",
			Jurisdictions: []model.TaxJurisdiction{
				{Code: "US-CA", Name: "California", Rate: decimal.RequireFromString("0.0725")},
			},
		},
		SettledStatuses: []string{"fulfilled"},
	}
	require.NoError(t, repo.Save(ctx, cfg))

	assert.Equal(t, model.MaxBps, cfg.Split.PlatformBps)
	assert.Equal(t, 0, cfg.Split.PartnerBps)
	assert.False(t, cfg.UpdatedAt.IsZero())

	got, err := repo.Get(ctx, "0xmerchant", "cafe")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cfg.SplitAddress, got.SplitAddress)
	assert.Equal(t, model.MaxBps, got.Split.PlatformBps)
	require.NotNil(t, got.BasePlatformFeePct)
	assert.True(t, base.Equal(*got.BasePlatformFeePct))
	assert.Equal(t, "US-CA", got.Tax.DefaultJurisdictionCode)
	assert.Equal(t, []string{"fulfilled"}, got.SettledStatuses)

	legacy, err := repo.Get(ctx, "0xmerchant", "")
	require.NoError(t, err)
	assert.Nil(t, legacy)
}

func TestTenantConfigRepository_SaveRejectsOversizedSplit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTenantConfigRepository(pool, zerolog.Nop())

	err := repo.Save(context.Background(), &model.TenantConfig{
		Wallet: "0xmerchant",
		Split:  &model.FeeSplitConfig{PlatformBps: 6000, PartnerBps: 6000},
	})
	assert.ErrorIs(t, err, model.ErrSplitConfigInvalid)
}

func TestTenantConfigRepository_SaveRequiresWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTenantConfigRepository(pool, zerolog.Nop())

	err := repo.Save(context.Background(), &model.TenantConfig{})
	assert.ErrorIs(t, err, model.ErrWalletRequired)
}

func TestTenantConfigRepository_BrandFee(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTenantConfigRepository(pool, zerolog.Nop())
	ctx := context.Background()

	missing, err := repo.GetBrandFee(ctx, "cafe")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.SaveBrandFee(ctx, "cafe", model.BrandFeeConfig{PlatformBps: 50, PartnerBps: 25}))
	require.NoError(t, repo.SaveBrandFee(ctx, "cafe", model.BrandFeeConfig{PlatformBps: 60, PartnerBps: 20}))

	fee, err := repo.GetBrandFee(ctx, "cafe")
	require.NoError(t, err)
	require.NotNil(t, fee)
	assert.Equal(t, model.BrandFeeConfig{PlatformBps: 60, PartnerBps: 20}, *fee)
}

func TestTenantConfigRepository_SaveBrandFeeNormalizes(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTenantConfigRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name     string
		fee      model.BrandFeeConfig
		expected *model.BrandFeeConfig
		err      error
	}{
		{
			name:     "Negative share clamps to zero",
			fee:      model.BrandFeeConfig{PlatformBps: -50, PartnerBps: 25},
			expected: &model.BrandFeeConfig{PlatformBps: 0, PartnerBps: 25},
		},
		{
			name: "Sum above 10000 is rejected",
			fee:  model.BrandFeeConfig{PlatformBps: 9000, PartnerBps: 5000},
			err:  model.ErrSplitConfigInvalid,
		},
		{
			name: "Single share above 10000 clamps then fails the sum",
			fee:  model.BrandFeeConfig{PlatformBps: 12000, PartnerBps: 1},
			err:  model.ErrSplitConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand := "brand-" + tt.name
			err := repo.SaveBrandFee(ctx, brand, tt.fee)

			fee, getErr := repo.GetBrandFee(ctx, brand)
			require.NoError(t, getErr)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, fee)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, fee)
			assert.Equal(t, *tt.expected, *fee)
		})
	}
}
