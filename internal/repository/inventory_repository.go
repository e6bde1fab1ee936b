package repository

import (
	"context"
	"fmt"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const inventoryColumns = `id, wallet, brand_key, sku, name, price_minor, taxable, images, collections`

// inventoryRepository implements the InventoryRepository interface using PostgreSQL.
type inventoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInventoryRepository creates a new PostgreSQL-backed inventory repository.
func NewInventoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) InventoryRepository {
	return &inventoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "inventory").Logger(),
	}
}

func (r *inventoryRepository) GetByID(ctx context.Context, wallet, id string) (*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE wallet = $1 AND id = $2`
	return r.getOne(ctx, query, "id", id, wallet, id)
}

func (r *inventoryRepository) GetByBrandID(ctx context.Context, brandKey, id string) (*model.InventoryItem, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_items
		WHERE brand_key = $1 AND id = $2
		ORDER BY created_at
		LIMIT 1
	`
	return r.getOne(ctx, query, "id", id, brandKey, id)
}

func (r *inventoryRepository) GetBySKU(ctx context.Context, wallet, sku string) (*model.InventoryItem, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_items
		WHERE wallet = $1 AND sku = $2
		ORDER BY created_at
		LIMIT 1
	`
	return r.getOne(ctx, query, "sku", sku, wallet, sku)
}

func (r *inventoryRepository) getOne(ctx context.Context, query, refField, ref string, args ...any) (*model.InventoryItem, error) {
	var it model.InventoryItem
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&it.ID, &it.Wallet, &it.BrandKey, &it.SKU, &it.Name,
		&it.PriceMinor, &it.Taxable, &it.Images, &it.Collections,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str(refField, ref).Msg("inventory item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str(refField, ref).Msg("failed to query inventory item")
		return nil, fmt.Errorf("failed to query inventory item: %w", err)
	}
	return &it, nil
}

func (r *inventoryRepository) Upsert(ctx context.Context, item *model.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (wallet, id) DO UPDATE SET
			brand_key = EXCLUDED.brand_key,
			sku = EXCLUDED.sku,
			name = EXCLUDED.name,
			price_minor = EXCLUDED.price_minor,
			taxable = EXCLUDED.taxable,
			images = EXCLUDED.images,
			collections = EXCLUDED.collections
	`
	images := item.Images
	if images == nil {
		images = []string{}
	}
	collections := item.Collections
	if collections == nil {
		collections = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.Wallet, item.BrandKey, item.SKU, item.Name,
		item.PriceMinor, item.Taxable, images, collections,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("id", item.ID).Msg("failed to upsert inventory item")
		return fmt.Errorf("failed to upsert inventory item: %w", err)
	}
	return nil
}
