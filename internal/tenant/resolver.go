package tenant

import (
	"context"
	"fmt"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/rs/zerolog"
)

// Resolver yields a merchant's effective configuration.
type Resolver interface {
	Resolve(ctx context.Context, tc Context, wallet string) (*EffectiveConfig, error)
}

// BrandFeeSource reads brand-level fee shares. It returns nil, nil for
// brands without one.
type BrandFeeSource interface {
	GetBrandFee(ctx context.Context, brandKey string) (*model.BrandFeeConfig, error)
}

// ChainResolver evaluates strategies in order; the first document found wins.
type ChainResolver struct {
	strategies   []Strategy
	brandFees    BrandFeeSource
	defaultBrand string
	currency     string
	logger       zerolog.Logger
}

// NewChainResolver creates a resolver over strategies. brandFees may be nil.
func NewChainResolver(strategies []Strategy, brandFees BrandFeeSource, defaultBrand, currency string, logger zerolog.Logger) *ChainResolver {
	return &ChainResolver{
		strategies:   strategies,
		brandFees:    brandFees,
		defaultBrand: defaultBrand,
		currency:     currency,
		logger:       logger.With().Str("component", "tenant_resolver").Logger(),
	}
}

// Resolve walks the chain and attaches the brand fee.
func (r *ChainResolver) Resolve(ctx context.Context, tc Context, wallet string) (*EffectiveConfig, error) {
	if wallet == "" {
		return nil, model.ErrWalletRequired
	}

	brand := tc.Brand(r.defaultBrand)

	var cfg *EffectiveConfig
	for _, s := range r.strategies {
		doc, err := s.Resolve(ctx, tc, wallet)
		if err != nil {
			r.logger.Error().Err(err).
				Str("strategy", s.Name()).
				Str("wallet", wallet).
				Msg("tenant config lookup failed")
			return nil, fmt.Errorf("failed to resolve tenant config via %s: %w", s.Name(), err)
		}
		if doc != nil {
			cfg = fromDocument(doc, wallet, brand, s.Name(), r.currency)
			break
		}
	}
	if cfg == nil {
		cfg = &EffectiveConfig{Wallet: wallet, BrandKey: brand, Source: "none", Currency: r.currency}
	}

	if r.brandFees != nil && cfg.BrandKey != "" {
		fee, err := r.brandFees.GetBrandFee(ctx, cfg.BrandKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load brand fee for %s: %w", cfg.BrandKey, err)
		}
		cfg.BrandFee = fee
	}

	r.logger.Debug().
		Str("wallet", wallet).
		Str("brand", cfg.BrandKey).
		Str("source", cfg.Source).
		Msg("resolved tenant config")

	return cfg, nil
}
