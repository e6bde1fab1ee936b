package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/pricing"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const merchant = "0xmerchant"

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetByID(ctx context.Context, wallet, id string) (*model.InventoryItem, error) {
	args := m.Called(ctx, wallet, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryItem), args.Error(1)
}

func (m *MockCatalog) GetByBrandID(ctx context.Context, brandKey, id string) (*model.InventoryItem, error) {
	args := m.Called(ctx, brandKey, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryItem), args.Error(1)
}

func (m *MockCatalog) GetBySKU(ctx context.Context, wallet, sku string) (*model.InventoryItem, error) {
	args := m.Called(ctx, wallet, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryItem), args.Error(1)
}

func TestResolve_ByIDWithModifiers(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("GetByID", ctx, merchant, "latte").Return(&model.InventoryItem{ID: "latte", PriceMinor: 450}, nil)

	r := NewResolver(catalog, zerolog.Nop())
	lines, err := r.Resolve(ctx, tenant.Context{}, merchant, []model.LineItemRequest{{
		ID:       "latte",
		Quantity: 2,
		SelectedModifiers: []model.Modifier{
			{Name: "Oat milk", PriceAdjustmentMinor: 75},
			{Name: "Extra shot", PriceAdjustmentMinor: 100, Quantity: 2},
		},
	}})

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(725), lines[0].UnitPriceMinor)
	assert.Equal(t, int64(1450), lines[0].AmountMinor())
	catalog.AssertExpectations(t)
}

func TestResolve_FallsBackToBrandThenSKU(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("GetByID", ctx, merchant, "shared-1").Return(nil, nil)
	catalog.On("GetByBrandID", ctx, "acme", "shared-1").Return(&model.InventoryItem{ID: "shared-1", PriceMinor: 300}, nil)
	catalog.On("GetByID", ctx, merchant, "gone").Return(nil, nil)
	catalog.On("GetByBrandID", ctx, "acme", "gone").Return(nil, nil)
	catalog.On("GetBySKU", ctx, merchant, "MUG-01").Return(&model.InventoryItem{ID: "mug", SKU: "MUG-01", PriceMinor: 1200}, nil)

	r := NewResolver(catalog, zerolog.Nop())
	lines, err := r.Resolve(ctx, tenant.Context{BrandKey: "acme"}, merchant, []model.LineItemRequest{
		{ID: "shared-1", Quantity: 1},
		{ID: "gone", SKU: "MUG-01", Quantity: 3},
	})

	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "shared-1", lines[0].Item.ID)
	assert.Equal(t, "mug", lines[1].Item.ID)
	assert.Equal(t, int64(3600), lines[1].AmountMinor())
	catalog.AssertExpectations(t)
}

func TestResolve_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		items    []model.LineItemRequest
		setup    func(c *MockCatalog)
		expected error
		detail   string
	}{
		{
			name:     "empty cart",
			items:    nil,
			setup:    func(c *MockCatalog) {},
			expected: model.ErrItemsRequired,
		},
		{
			name:     "zero quantity",
			items:    []model.LineItemRequest{{ID: "a", Quantity: 0}},
			setup:    func(c *MockCatalog) {},
			expected: model.ErrInvalidAmount,
			detail:   "a",
		},
		{
			name:  "one unresolved line fails the order",
			items: []model.LineItemRequest{{ID: "a", Quantity: 1}, {SKU: "NOPE", Quantity: 1}},
			setup: func(c *MockCatalog) {
				c.On("GetByID", ctx, merchant, "a").Return(&model.InventoryItem{ID: "a", PriceMinor: 100}, nil)
				c.On("GetBySKU", ctx, merchant, "NOPE").Return(nil, nil)
			},
			expected: model.ErrInventoryNotFound,
			detail:   "NOPE",
		},
		{
			name:     "quantity above line limit",
			items:    []model.LineItemRequest{{ID: "a", Quantity: pricing.MaxLineQuantity + 1}},
			setup:    func(c *MockCatalog) {},
			expected: model.ErrInvalidAmount,
			detail:   "a",
		},
		{
			name:     "too many lines",
			items:    make([]model.LineItemRequest, pricing.MaxOrderLines+1),
			setup:    func(c *MockCatalog) {},
			expected: model.ErrInvalidAmount,
		},
		{
			name: "modifier drives unit price below zero",
			items: []model.LineItemRequest{{
				ID:                "cheap",
				Quantity:          1,
				SelectedModifiers: []model.Modifier{{Name: "Coupon hack", PriceAdjustmentMinor: -5000}},
			}},
			setup: func(c *MockCatalog) {
				c.On("GetByID", ctx, merchant, "cheap").Return(&model.InventoryItem{ID: "cheap", PriceMinor: 100}, nil)
			},
			expected: model.ErrInvalidAmount,
			detail:   "cheap",
		},
		{
			name: "negative catalog price",
			items: []model.LineItemRequest{{SKU: "NEG", Quantity: 1}},
			setup: func(c *MockCatalog) {
				c.On("GetBySKU", ctx, merchant, "NEG").Return(&model.InventoryItem{ID: "neg", SKU: "NEG", PriceMinor: -1}, nil)
			},
			expected: model.ErrInvalidAmount,
			detail:   "NEG",
		},
		{
			name: "modifier quantity above limit",
			items: []model.LineItemRequest{{
				ID:                "latte",
				Quantity:          1,
				SelectedModifiers: []model.Modifier{{Name: "Shot", PriceAdjustmentMinor: 1, Quantity: pricing.MaxModifierQuantity + 1}},
			}},
			setup: func(c *MockCatalog) {
				c.On("GetByID", ctx, merchant, "latte").Return(&model.InventoryItem{ID: "latte", PriceMinor: 450}, nil)
			},
			expected: model.ErrInvalidAmount,
			detail:   "latte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalog)
			tt.setup(catalog)

			r := NewResolver(catalog, zerolog.Nop())
			lines, err := r.Resolve(ctx, tenant.Context{}, merchant, tt.items)

			assert.Nil(t, lines)
			assert.ErrorIs(t, err, tt.expected)
			catalog.AssertExpectations(t)
			if tt.detail != "" {
				de, ok := model.AsDomainError(err)
				require.True(t, ok)
				assert.Equal(t, tt.detail, de.Detail)
			}
		})
	}
}

func TestResolve_CatalogFailure(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("GetByID", ctx, merchant, "a").Return(nil, errors.New("connection reset"))

	r := NewResolver(catalog, zerolog.Nop())
	_, err := r.Resolve(ctx, tenant.Context{}, merchant, []model.LineItemRequest{{ID: "a", Quantity: 1}})

	require.Error(t, err)
	_, isDomain := model.AsDomainError(err)
	assert.False(t, isDomain)
}

func TestResolve_NegativeModifierWithinPrice(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("GetByID", ctx, merchant, "muffin").Return(&model.InventoryItem{ID: "muffin", PriceMinor: 500}, nil)

	r := NewResolver(catalog, zerolog.Nop())
	lines, err := r.Resolve(ctx, tenant.Context{}, merchant, []model.LineItemRequest{{
		ID:                "muffin",
		Quantity:          2,
		SelectedModifiers: []model.Modifier{{Name: "No icing", PriceAdjustmentMinor: -500}},
	}})

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(0), lines[0].UnitPriceMinor)
	catalog.AssertExpectations(t)
}
