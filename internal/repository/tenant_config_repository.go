package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// tenantConfigRepository implements the TenantConfigRepository interface
// using PostgreSQL. Documents are stored whole as JSONB.
type tenantConfigRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
	now    func() time.Time
}

// NewTenantConfigRepository creates a new PostgreSQL-backed tenant config repository.
func NewTenantConfigRepository(pool *pgxpool.Pool, logger zerolog.Logger) TenantConfigRepository {
	return &tenantConfigRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "tenant_config").Logger(),
		now:    time.Now,
	}
}

func (r *tenantConfigRepository) Get(ctx context.Context, wallet, brandKey string) (*model.TenantConfig, error) {
	query := `SELECT config FROM tenant_configs WHERE wallet = $1 AND brand_key = $2`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, wallet, brandKey).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("wallet", wallet).Str("brand", brandKey).Msg("failed to query tenant config")
		return nil, fmt.Errorf("failed to query tenant config: %w", err)
	}

	var cfg model.TenantConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		r.logger.Error().Err(err).Str("wallet", wallet).Str("brand", brandKey).Msg("failed to decode tenant config")
		return nil, fmt.Errorf("failed to decode tenant config: %w", err)
	}
	cfg.Wallet = wallet
	cfg.BrandKey = brandKey
	return &cfg, nil
}

func (r *tenantConfigRepository) Save(ctx context.Context, cfg *model.TenantConfig) error {
	if cfg.Wallet == "" {
		return model.ErrWalletRequired
	}
	doc := *cfg
	if doc.Split != nil {
		split, err := doc.Split.Normalize()
		if err != nil {
			return err
		}
		doc.Split = &split
	}
	doc.UpdatedAt = r.now().UTC()

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode tenant config: %w", err)
	}

	query := `
		INSERT INTO tenant_configs (wallet, brand_key, config, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet, brand_key) DO UPDATE SET
			config = EXCLUDED.config,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, doc.Wallet, doc.BrandKey, raw, doc.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("wallet", doc.Wallet).Str("brand", doc.BrandKey).Msg("failed to save tenant config")
		return fmt.Errorf("failed to save tenant config: %w", err)
	}

	*cfg = doc
	return nil
}

func (r *tenantConfigRepository) GetBrandFee(ctx context.Context, brandKey string) (*model.BrandFeeConfig, error) {
	query := `SELECT platform_bps, partner_bps FROM brand_fees WHERE brand_key = $1`

	var fee model.BrandFeeConfig
	err := r.pool.QueryRow(ctx, query, brandKey).Scan(&fee.PlatformBps, &fee.PartnerBps)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("brand", brandKey).Msg("failed to query brand fee")
		return nil, fmt.Errorf("failed to query brand fee: %w", err)
	}
	return &fee, nil
}

func (r *tenantConfigRepository) SaveBrandFee(ctx context.Context, brandKey string, fee model.BrandFeeConfig) error {
	fee, err := fee.Normalize()
	if err != nil {
		r.logger.Warn().Str("brand", brandKey).Msg("rejecting brand fee above 10000 bps")
		return err
	}

	query := `
		INSERT INTO brand_fees (brand_key, platform_bps, partner_bps, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (brand_key) DO UPDATE SET
			platform_bps = EXCLUDED.platform_bps,
			partner_bps = EXCLUDED.partner_bps,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, brandKey, fee.PlatformBps, fee.PartnerBps); err != nil {
		r.logger.Error().Err(err).Str("brand", brandKey).Msg("failed to save brand fee")
		return fmt.Errorf("failed to save brand fee: %w", err)
	}
	return nil
}
