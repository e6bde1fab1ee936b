package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema creates the catalog, discount and tenant configuration tables.
// Every statement is idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT NOT NULL,
		wallet TEXT NOT NULL,
		brand_key TEXT NOT NULL DEFAULT '',
		sku TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		price_minor BIGINT NOT NULL CHECK (price_minor >= 0),
		taxable BOOLEAN NOT NULL DEFAULT TRUE,
		images TEXT[] NOT NULL DEFAULT '{}',
		collections TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (wallet, id)
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_brand_id ON inventory_items(brand_key, id);
	CREATE INDEX IF NOT EXISTS idx_inventory_wallet_sku ON inventory_items(wallet, sku);

	CREATE TABLE IF NOT EXISTS discounts (
		id TEXT PRIMARY KEY,
		wallet TEXT NOT NULL,
		code TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL CHECK (type IN ('percentage', 'fixed_amount', 'buy_x_get_y')),
		applies_to TEXT NOT NULL DEFAULT 'all' CHECK (applies_to IN ('all', 'collection', 'product')),
		applies_to_ids TEXT[] NOT NULL DEFAULT '{}',
		min_requirement TEXT NOT NULL DEFAULT 'none' CHECK (min_requirement IN ('none', 'amount', 'quantity')),
		min_requirement_value BIGINT NOT NULL DEFAULT 0,
		value NUMERIC(14,4) NOT NULL DEFAULT 0,
		buy_quantity INT NOT NULL DEFAULT 0,
		get_quantity INT NOT NULL DEFAULT 0,
		start_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		end_date TIMESTAMPTZ,
		used_count BIGINT NOT NULL DEFAULT 0,
		usage_limit BIGINT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_discounts_wallet ON discounts(wallet, created_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_discounts_wallet_code ON discounts(wallet, upper(code)) WHERE code <> '';

	CREATE TABLE IF NOT EXISTS tenant_configs (
		wallet TEXT NOT NULL,
		brand_key TEXT NOT NULL DEFAULT '',
		config JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (wallet, brand_key)
	);

	CREATE TABLE IF NOT EXISTS brand_fees (
		brand_key TEXT PRIMARY KEY,
		platform_bps INT NOT NULL CHECK (platform_bps BETWEEN 0 AND 10000),
		partner_bps INT NOT NULL CHECK (partner_bps BETWEEN 0 AND 10000),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info().Msg("database schema applied")
	return nil
}
