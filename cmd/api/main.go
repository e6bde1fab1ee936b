package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/config"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/database"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/events"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/handler"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/inventory"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/jurisdiction"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/metrics"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/middleware"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/persistence"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/pricing"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/receipt"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/repository"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/router"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/service"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting portalpay order API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	inventoryRepo := repository.NewInventoryRepository(pool, logger)
	discountRepo := repository.NewDiscountRepository(pool, logger)
	tenantRepo := repository.NewTenantConfigRepository(pool, logger)

	tenants, closeTenants, err := newTenantResolver(ctx, cfg, tenantRepo, logger)
	if err != nil {
		return err
	}
	defer closeTenants()

	jurisdictions, err := newJurisdictionLookup(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, err := newReceiptStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	gateway := persistence.NewGateway(store, persistence.Options{
		MaxRetries:   cfg.Persistence.MaxRetries,
		RetryInitial: cfg.Persistence.RetryInitial,
		CASRetries:   cfg.Persistence.CASRetries,
	}, logger)
	go gateway.Run(ctx, cfg.Persistence.FlushInterval)

	publisher := newPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry, gateway.QueueDepth)

	machine := receipt.NewMachine(cfg.Pricing.ExtraSettledStatuses, cfg.Pricing.PendingReceiptTTL)

	// Initialize services
	orderService := service.NewOrderService(service.OrderDeps{
		Tenants:       tenants,
		Lines:         inventory.NewResolver(inventoryRepo, logger),
		Discounts:     discountRepo,
		Jurisdictions: jurisdictions,
		Gateway:       gateway,
		Machine:       machine,
		Publisher:     publisher,
		Metrics:       m,
	}, service.OrderOptions{
		DefaultFeePct:   cfg.Pricing.DefaultFeePct,
		DefaultBrandKey: cfg.Pricing.DefaultBrandKey,
		PortalBaseURL:   cfg.Pricing.PortalBaseURL,
	}, logger)

	receiptService := service.NewReceiptService(service.ReceiptDeps{
		Tenants:   tenants,
		Gateway:   gateway,
		Machine:   machine,
		Publisher: publisher,
		Metrics:   m,
	}, cfg.Pricing.ReceiptListCap, logger)

	// Initialize rate limiter
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(ctx, time.Minute)
	}

	// Initialize router
	mux := router.New(router.Handlers{
		Orders:   handler.NewOrderHandler(orderService, logger),
		Receipts: handler.NewReceiptHandler(receiptService, logger),
		Health:   handler.NewHealthHandler(gateway.QueueDepth),
		Metrics:  metrics.Handler(registry),
	}, router.Options{
		Authenticator: newAuthenticator(cfg.Auth),
		RateLimiter:   limiter,
		Metrics:       m,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Last chance for receipts accepted while the store was down.
		if res := gateway.Flush(shutdownCtx); res.Remaining > 0 {
			logger.Warn().Int("remaining", res.Remaining).Msg("degraded queue not fully drained at shutdown")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newTenantResolver builds the config fallback chain, fronted by the redis
// cache when enabled. The returned func releases the redis client.
func newTenantResolver(ctx context.Context, cfg *config.Config, repo repository.TenantConfigRepository, logger zerolog.Logger) (tenant.Resolver, func(), error) {
	defaults := model.TenantConfig{Currency: cfg.Pricing.Currency}
	chain := tenant.NewChainResolver(
		tenant.DefaultChain(repo, defaults),
		repo,
		cfg.Pricing.DefaultBrandKey,
		cfg.Pricing.Currency,
		logger,
	)
	if !cfg.Redis.Enabled {
		return chain, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("tenant config cache enabled")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	return tenant.NewCachedResolver(chain, tenant.NewRedisCache(client), cfg.Redis.CacheTTL, logger), closeFn, nil
}

// newJurisdictionLookup loads the shared tax tables. It returns nil when no
// table files are configured so tenants rely on their own jurisdictions.
func newJurisdictionLookup(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (pricing.JurisdictionLookup, error) {
	if len(cfg.Jurisdictions.Files) == 0 {
		logger.Info().Msg("no shared jurisdiction tables configured")
		return nil, nil
	}

	fileLoader := jurisdiction.NewFileLoader(logger)
	loader := fileLoader
	if cfg.S3.Enabled {
		s3Loader, err := jurisdiction.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Endpoint, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = jurisdiction.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	} else {
		logger.Info().Msg("using local file system for jurisdiction tables (S3 disabled)")
	}

	table, err := jurisdiction.NewTable(ctx, cfg.Jurisdictions.Files, loader, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load jurisdiction tables: %w", err)
	}
	go table.Run(ctx, cfg.Jurisdictions.ReloadInterval)
	return table, nil
}

func newReceiptStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.ReceiptStore, error) {
	if !cfg.Dynamo.Enabled {
		logger.Warn().Msg("DynamoDB disabled, receipts are kept in memory")
		return repository.NewMemoryReceiptStore(), nil
	}
	store, err := repository.NewDynamoReceiptStore(ctx, cfg.Dynamo.Table, cfg.Dynamo.Region, cfg.Dynamo.Endpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize receipt store: %w", err)
	}
	return store, nil
}

func newPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info().Msg("no kafka brokers configured, receipt events disabled")
		return events.Nop{}
	}
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
}

func newAuthenticator(cfg config.AuthConfig) auth.Authenticator {
	var chain auth.Chain
	if cfg.JWTSecret != "" {
		chain = append(chain, auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer))
	}
	if cfg.APIKey != "" {
		chain = append(chain, auth.NewAPIKeyAuthenticator(cfg.APIKey))
	}
	return chain
}
