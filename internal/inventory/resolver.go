// Package inventory binds cart lines to catalog records and prices them.
package inventory

import (
	"context"
	"fmt"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/pricing"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/rs/zerolog"
)

// Catalog looks up inventory records. Each method returns nil, nil when
// nothing matches.
type Catalog interface {
	GetByID(ctx context.Context, wallet, id string) (*model.InventoryItem, error)
	GetByBrandID(ctx context.Context, brandKey, id string) (*model.InventoryItem, error)
	GetBySKU(ctx context.Context, wallet, sku string) (*model.InventoryItem, error)
}

// Resolver resolves order lines against a Catalog.
type Resolver struct {
	catalog Catalog
	logger  zerolog.Logger
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog Catalog, logger zerolog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  logger.With().Str("component", "inventory").Logger(),
	}
}

// Resolve looks every line up by merchant id, then brand-scoped id, then sku.
// Any unresolved line fails the whole order, as does any line whose unit
// price ends up negative or out of range.
func (r *Resolver) Resolve(ctx context.Context, tc tenant.Context, wallet string, items []model.LineItemRequest) ([]model.ResolvedLine, error) {
	if len(items) == 0 {
		return nil, model.ErrItemsRequired
	}
	if len(items) > pricing.MaxOrderLines {
		return nil, model.ErrInvalidAmount.WithDetail(fmt.Sprintf("more than %d lines", pricing.MaxOrderLines))
	}

	lines := make([]model.ResolvedLine, 0, len(items))
	for _, req := range items {
		if !pricing.ValidQuantity(req.Quantity) {
			return nil, model.ErrInvalidAmount.WithDetail(req.Ref())
		}
		if req.ID == "" && req.SKU == "" {
			return nil, model.ErrInventoryNotFound
		}

		item, err := r.lookup(ctx, tc, wallet, req)
		if err != nil {
			return nil, err
		}
		if item == nil {
			r.logger.Warn().
				Str("wallet", wallet).
				Str("ref", req.Ref()).
				Msg("inventory item not found")
			return nil, model.ErrInventoryNotFound.WithDetail(req.Ref())
		}

		unit, ok := pricing.UnitPrice(item.PriceMinor, req.SelectedModifiers)
		if !ok {
			r.logger.Warn().
				Str("wallet", wallet).
				Str("ref", req.Ref()).
				Int64("priceMinor", item.PriceMinor).
				Msg("line unit price out of range")
			return nil, model.ErrInvalidAmount.WithDetail(req.Ref())
		}

		lines = append(lines, model.ResolvedLine{
			Item:           *item,
			Quantity:       req.Quantity,
			Modifiers:      req.SelectedModifiers,
			UnitPriceMinor: unit,
		})
	}

	return lines, nil
}

func (r *Resolver) lookup(ctx context.Context, tc tenant.Context, wallet string, req model.LineItemRequest) (*model.InventoryItem, error) {
	if req.ID != "" {
		item, err := r.catalog.GetByID(ctx, wallet, req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up item %s: %w", req.ID, err)
		}
		if item != nil {
			return item, nil
		}
		if tc.BrandKey != "" {
			item, err = r.catalog.GetByBrandID(ctx, tc.BrandKey, req.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up brand item %s: %w", req.ID, err)
			}
			if item != nil {
				return item, nil
			}
		}
	}
	if req.SKU != "" {
		item, err := r.catalog.GetBySKU(ctx, wallet, req.SKU)
		if err != nil {
			return nil, fmt.Errorf("failed to look up sku %s: %w", req.SKU, err)
		}
		return item, nil
	}
	return nil, nil
}
