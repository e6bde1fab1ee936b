package service

import (
	"context"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/events"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/persistence"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/repository"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// MockTenantResolver is a mock implementation of tenant.Resolver.
type MockTenantResolver struct {
	mock.Mock
}

func (m *MockTenantResolver) Resolve(ctx context.Context, tc tenant.Context, wallet string) (*tenant.EffectiveConfig, error) {
	args := m.Called(ctx, tc, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.EffectiveConfig), args.Error(1)
}

// MockLineResolver is a mock implementation of LineResolver.
type MockLineResolver struct {
	mock.Mock
}

func (m *MockLineResolver) Resolve(ctx context.Context, tc tenant.Context, wallet string, items []model.LineItemRequest) ([]model.ResolvedLine, error) {
	args := m.Called(ctx, tc, wallet, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ResolvedLine), args.Error(1)
}

// MockDiscountSource is a mock implementation of DiscountSource.
type MockDiscountSource struct {
	mock.Mock
}

func (m *MockDiscountSource) ListAutomatic(ctx context.Context, wallet string) ([]model.Discount, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Discount), args.Error(1)
}

func (m *MockDiscountSource) GetByCode(ctx context.Context, wallet, code string) (*model.Discount, error) {
	args := m.Called(ctx, wallet, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Discount), args.Error(1)
}

func (m *MockDiscountSource) IncrementUsage(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// MockReceiptStore is a mock implementation of repository.ReceiptStore.
type MockReceiptStore struct {
	mock.Mock
}

func (m *MockReceiptStore) Create(ctx context.Context, r *model.Receipt) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReceiptStore) Get(ctx context.Context, wallet, receiptID string) (*model.Receipt, error) {
	args := m.Called(ctx, wallet, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockReceiptStore) CompareAndSwap(ctx context.Context, r *model.Receipt, expected int64) error {
	return m.Called(ctx, r, expected).Error(0)
}

func (m *MockReceiptStore) ListByWallet(ctx context.Context, wallet string, limit int) ([]model.Receipt, error) {
	args := m.Called(ctx, wallet, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Receipt), args.Error(1)
}

func newGateway(store repository.ReceiptStore) *persistence.Gateway {
	return persistence.NewGateway(store, persistence.Options{MaxRetries: 1, RetryInitial: time.Millisecond, CASRetries: 3}, zerolog.Nop())
}
