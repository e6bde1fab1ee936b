package repository

import (
	"context"
	"fmt"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// value is read as text so it lands in decimal.Decimal without float rounding.
const discountColumns = `
	id, wallet, code, title, type, applies_to, applies_to_ids,
	min_requirement, min_requirement_value, value::text, buy_quantity, get_quantity,
	start_date, end_date, used_count, usage_limit, status
`

// discountRepository implements the DiscountRepository interface using PostgreSQL.
type discountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(pool *pgxpool.Pool, logger zerolog.Logger) DiscountRepository {
	return &discountRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "discount").Logger(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiscount(row rowScanner) (*model.Discount, error) {
	var (
		d     model.Discount
		value string
	)
	err := row.Scan(
		&d.ID, &d.Wallet, &d.Code, &d.Title, &d.Type, &d.AppliesTo, &d.AppliesToIDs,
		&d.MinRequirement, &d.MinRequirementValue, &value, &d.BuyQuantity, &d.GetQuantity,
		&d.StartDate, &d.EndDate, &d.UsedCount, &d.UsageLimit, &d.Status,
	)
	if err != nil {
		return nil, err
	}
	d.Value, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid discount value %q: %w", value, err)
	}
	return &d, nil
}

func (r *discountRepository) ListAutomatic(ctx context.Context, wallet string) ([]model.Discount, error) {
	query := `
		SELECT ` + discountColumns + `
		FROM discounts
		WHERE wallet = $1 AND code = ''
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, wallet)
	if err != nil {
		r.logger.Error().Err(err).Str("wallet", wallet).Msg("failed to query discounts")
		return nil, fmt.Errorf("failed to query discounts: %w", err)
	}
	defer rows.Close()

	discounts := []model.Discount{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan discount row")
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		discounts = append(discounts, *d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating discount rows")
		return nil, fmt.Errorf("error iterating discounts: %w", err)
	}

	return discounts, nil
}

func (r *discountRepository) GetByCode(ctx context.Context, wallet, code string) (*model.Discount, error) {
	if code == "" {
		return nil, nil
	}
	query := `
		SELECT ` + discountColumns + `
		FROM discounts
		WHERE wallet = $1 AND code <> '' AND upper(code) = upper($2)
	`

	d, err := scanDiscount(r.pool.QueryRow(ctx, query, wallet, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return d, nil
}

func (r *discountRepository) IncrementUsage(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE discounts
		SET used_count = used_count + 1
		WHERE id = $1 AND (usage_limit = 0 OR used_count < usage_limit)
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_id", id).Msg("failed to increment discount usage")
		return false, fmt.Errorf("failed to increment discount usage: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *discountRepository) Create(ctx context.Context, d *model.Discount) error {
	query := `
		INSERT INTO discounts (
			id, wallet, code, title, type, applies_to, applies_to_ids,
			min_requirement, min_requirement_value, value, buy_quantity, get_quantity,
			start_date, end_date, used_count, usage_limit, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11, $12, $13, $14, $15, $16, $17)
	`
	ids := d.AppliesToIDs
	if ids == nil {
		ids = []string{}
	}
	scope := d.AppliesTo
	if scope == "" {
		scope = model.AppliesToAll
	}
	minReq := d.MinRequirement
	if minReq == "" {
		minReq = model.MinRequirementNone
	}

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.Wallet, d.Code, d.Title, string(d.Type), string(scope), ids,
		string(minReq), d.MinRequirementValue, d.Value.String(), d.BuyQuantity, d.GetQuantity,
		d.StartDate, d.EndDate, d.UsedCount, d.UsageLimit, string(d.Status),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_id", d.ID).Msg("failed to create discount")
		return fmt.Errorf("failed to create discount: %w", err)
	}
	return nil
}
