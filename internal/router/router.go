package router

import (
	"net/http"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/handler"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/metrics"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers are the HTTP endpoints served by the router.
type Handlers struct {
	Orders   *handler.OrderHandler
	Receipts *handler.ReceiptHandler
	Health   *handler.HealthHandler
	// Metrics serves the Prometheus scrape endpoint. Nil disables /metrics.
	Metrics http.Handler
}

// Options configures the middleware stack.
type Options struct {
	Authenticator auth.Authenticator
	// RateLimiter may be nil to disable rate limiting.
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", h.Health.Health)
	if h.Metrics != nil {
		mux.Handle("/metrics", h.Metrics)
	}

	mux.HandleFunc("/orders", h.Orders.Create)
	mux.HandleFunc("/api/orders", h.Orders.Create)
	mux.HandleFunc("/orders/quote", h.Orders.Quote)

	mux.HandleFunc("/receipts", h.Receipts.List)
	mux.HandleFunc("/receipts/status", h.Receipts.UpdateStatus)
	mux.HandleFunc("/receipts/{id}", h.Receipts.GetByID)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS ->
	// Authenticate -> RateLimit -> Instrument. Instrument must wrap the mux
	// directly to see the matched pattern.
	var handler http.Handler = mux
	if opts.Metrics != nil {
		handler = middleware.Instrument(opts.Metrics)(handler)
	}
	if opts.RateLimiter != nil {
		handler = opts.RateLimiter.Middleware(handler)
	}
	handler = middleware.Authenticate(opts.Authenticator, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
