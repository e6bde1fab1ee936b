package tenant

import (
	"context"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
)

// Store reads stored tenant documents. Get returns nil, nil when no document
// exists for the wallet and brand; an empty brand selects the legacy document.
type Store interface {
	Get(ctx context.Context, wallet, brandKey string) (*model.TenantConfig, error)
}

// Strategy is one step of the configuration fallback chain. A nil document
// with a nil error passes to the next strategy.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, tc Context, wallet string) (*model.TenantConfig, error)
}

type strategyFunc struct {
	name string
	fn   func(ctx context.Context, tc Context, wallet string) (*model.TenantConfig, error)
}

func (s strategyFunc) Name() string { return s.name }

func (s strategyFunc) Resolve(ctx context.Context, tc Context, wallet string) (*model.TenantConfig, error) {
	return s.fn(ctx, tc, wallet)
}

// BrandScoped loads the document stored for the explicit brand.
func BrandScoped(store Store) Strategy {
	return strategyFunc{name: "brand", fn: func(ctx context.Context, tc Context, wallet string) (*model.TenantConfig, error) {
		if tc.BrandKey == "" {
			return nil, nil
		}
		return store.Get(ctx, wallet, tc.BrandKey)
	}}
}

// Legacy loads the merchant's unscoped document.
func Legacy(store Store) Strategy {
	return strategyFunc{name: "legacy", fn: func(ctx context.Context, _ Context, wallet string) (*model.TenantConfig, error) {
		return store.Get(ctx, wallet, "")
	}}
}

// HostnameBrand loads the document of the brand derived from the hostname.
func HostnameBrand(store Store) Strategy {
	return strategyFunc{name: "hostname", fn: func(ctx context.Context, tc Context, wallet string) (*model.TenantConfig, error) {
		brand := tc.HostBrand()
		if brand == "" || brand == tc.BrandKey {
			return nil, nil
		}
		return store.Get(ctx, wallet, brand)
	}}
}

// Static always yields a copy of defaults.
func Static(defaults model.TenantConfig) Strategy {
	return strategyFunc{name: "default", fn: func(_ context.Context, _ Context, wallet string) (*model.TenantConfig, error) {
		doc := defaults
		doc.Wallet = wallet
		return &doc, nil
	}}
}

// DefaultChain is brand document → legacy document → hostname brand
// document → static defaults.
func DefaultChain(store Store, defaults model.TenantConfig) []Strategy {
	return []Strategy{
		BrandScoped(store),
		Legacy(store),
		HostnameBrand(store),
		Static(defaults),
	}
}
