// Package database opens the Postgres pool that backs the catalog, discount
// and tenant configuration repositories, and owns their schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pingInitialInterval is the first wait between startup pings.
var pingInitialInterval = 500 * time.Millisecond

// poolConfig maps cfg onto pgxpool settings. Zero durations keep the pgxpool
// defaults.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pc.MaxConns = int32(cfg.MaxConnections)
	pc.MinConns = int32(cfg.MinConnections)
	pc.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	return pc, nil
}

// NewPool creates a PostgreSQL connection pool and waits for the database to
// answer, retrying the ping up to cfg.ConnectRetries times.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	logger = logger.With().Str("component", "database").Logger()

	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int32("max_connections", pc.MaxConns).
		Int32("min_connections", pc.MinConns).
		Dur("max_conn_idle_time", pc.MaxConnIdleTime).
		Dur("health_check_period", pc.HealthCheckPeriod).
		Bool("migrate", cfg.Migrate).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = pingInitialInterval
	attempt := 0
	ping := func() error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("database not ready")
			return err
		}
		return nil
	}
	retries := uint64(max(cfg.ConnectRetries, 0))
	if err := backoff.Retry(ping, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database after %d attempts: %w", attempt, err)
	}

	logger.Info().Int("attempts", attempt).Msg("database connection pool ready")
	return pool, nil
}
