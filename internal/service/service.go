package service

import (
	"context"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/persistence"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"
)

// OrderService defines operations for pricing carts into receipts.
type OrderService interface {
	// CreateOrder prices the cart and persists the resulting receipt.
	CreateOrder(ctx context.Context, tc tenant.Context, wallet string, req *model.OrderRequest) (*model.OrderResponse, error)

	// Quote prices the cart without persisting anything.
	Quote(ctx context.Context, tc tenant.Context, wallet string, req *model.OrderRequest) (*model.QuoteResponse, error)
}

// ReceiptService defines operations on existing receipts.
type ReceiptService interface {
	// UpdateStatus applies a status signal on behalf of p.
	UpdateStatus(ctx context.Context, tc tenant.Context, p *auth.Principal, u model.StatusUpdate) (*model.StatusResult, error)

	// List returns the wallet's most recent receipts, newest first.
	List(ctx context.Context, wallet string, limit int) ([]model.Receipt, error)

	// Get retrieves one receipt.
	Get(ctx context.Context, wallet, receiptID string) (*model.Receipt, error)
}

// LineResolver binds cart lines to catalog items.
type LineResolver interface {
	Resolve(ctx context.Context, tc tenant.Context, wallet string, items []model.LineItemRequest) ([]model.ResolvedLine, error)
}

// DiscountSource reads the discounts an order may use.
type DiscountSource interface {
	ListAutomatic(ctx context.Context, wallet string) ([]model.Discount, error)
	GetByCode(ctx context.Context, wallet, code string) (*model.Discount, error)
	IncrementUsage(ctx context.Context, id string) (bool, error)
}

// ReceiptGateway persists receipts, degrading when the store is down.
type ReceiptGateway interface {
	Save(ctx context.Context, r *model.Receipt) persistence.SaveResult
	Get(ctx context.Context, wallet, receiptID string) (*model.Receipt, error)
	List(ctx context.Context, wallet string, limit int) ([]model.Receipt, error)
	ApplyStatus(ctx context.Context, wallet, receiptID string, apply persistence.ApplyFunc) (persistence.StatusResult, error)
}
