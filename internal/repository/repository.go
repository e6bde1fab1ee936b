package repository

import (
	"context"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
)

// InventoryRepository defines the interface for catalog lookups.
// Every getter returns nil, nil when no item matches.
type InventoryRepository interface {
	// GetByID retrieves an item owned by wallet.
	GetByID(ctx context.Context, wallet, id string) (*model.InventoryItem, error)

	// GetByBrandID retrieves an item by id within a brand, regardless of wallet.
	GetByBrandID(ctx context.Context, brandKey, id string) (*model.InventoryItem, error)

	// GetBySKU retrieves an item owned by wallet by its sku.
	GetBySKU(ctx context.Context, wallet, sku string) (*model.InventoryItem, error)

	// Upsert inserts or replaces an item.
	Upsert(ctx context.Context, item *model.InventoryItem) error
}

// DiscountRepository defines the interface for discount and coupon access.
type DiscountRepository interface {
	// ListAutomatic returns the wallet's code-less discounts in creation order.
	// Date and usage filtering is left to the pricing engine.
	ListAutomatic(ctx context.Context, wallet string) ([]model.Discount, error)

	// GetByCode retrieves a coupon by case-insensitive code.
	GetByCode(ctx context.Context, wallet, code string) (*model.Discount, error)

	// IncrementUsage atomically bumps the usage counter unless the limit is
	// reached. It reports whether the counter moved.
	IncrementUsage(ctx context.Context, id string) (bool, error)

	// Create inserts a discount.
	Create(ctx context.Context, d *model.Discount) error
}

// TenantConfigRepository defines the interface for stored site configuration.
type TenantConfigRepository interface {
	// Get retrieves the document for wallet and brand. An empty brand selects
	// the legacy document.
	Get(ctx context.Context, wallet, brandKey string) (*model.TenantConfig, error)

	// Save normalizes the split config and upserts the document.
	Save(ctx context.Context, cfg *model.TenantConfig) error

	// GetBrandFee retrieves the brand-level platform and partner shares.
	GetBrandFee(ctx context.Context, brandKey string) (*model.BrandFeeConfig, error)

	// SaveBrandFee upserts the brand-level shares.
	SaveBrandFee(ctx context.Context, brandKey string, fee model.BrandFeeConfig) error
}

// ReceiptStore defines the interface for receipt persistence.
type ReceiptStore interface {
	// Create writes a new receipt. It returns model.ErrReceiptExists when a
	// receipt with the same wallet and id is already stored, leaving the
	// stored copy untouched.
	Create(ctx context.Context, r *model.Receipt) error

	// Get retrieves a receipt, returning nil, nil when it does not exist.
	Get(ctx context.Context, wallet, receiptID string) (*model.Receipt, error)

	// CompareAndSwap writes r only if the stored version equals expected.
	// On success r.Version is expected+1. A lost race returns
	// model.ErrVersionConflict.
	CompareAndSwap(ctx context.Context, r *model.Receipt, expected int64) error

	// ListByWallet returns up to limit receipts, newest first.
	ListByWallet(ctx context.Context, wallet string, limit int) ([]model.Receipt, error)
}
