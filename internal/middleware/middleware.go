package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID carries the correlation id in both directions.
const HeaderRequestID = "X-Request-ID"

// publicPaths skip authentication and rate limiting.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

func isPublic(r *http.Request) bool {
	_, ok := publicPaths[r.URL.Path]
	return ok
}

var (
	merchantRoles = []string{auth.RoleMerchant, auth.RoleAdmin}
	// status callbacks also come from the payment processor
	statusRoles = []string{auth.RoleMerchant, auth.RoleAdmin, auth.RoleWebhook}
)

// requiredRoles returns the roles of which the caller of path must hold at
// least one.
func requiredRoles(path string) []string {
	if path == "/receipts/status" {
		return statusRoles
	}
	return merchantRoles
}

// CORS adds CORS headers to the response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Wallet, X-Brand-Key, X-Request-ID")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			event := logger.Info()
			if rw.statusCode >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Str("request_id", RequestIDFromContext(r.Context())).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("request_id", RequestIDFromContext(r.Context())).
						Msg("panic recovered")

					writeError(w, r, http.StatusInternalServerError, model.NewDomainError(model.ErrCodeInternalError, "internal server error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate resolves the caller with authn, checks it holds a role the
// route accepts and stores the principal in the request context. Public paths
// pass through untouched.
func Authenticate(authn auth.Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := authn.Authenticate(r, requiredRoles(r.URL.Path)...)
			if err != nil {
				de, ok := model.AsDomainError(err)
				if !ok {
					de = model.ErrUnauthorised
				}
				status := http.StatusUnauthorized
				if de.Code == model.ErrCodeForbidden {
					status = http.StatusForbidden
				}
				logger.Warn().
					Str("path", r.URL.Path).
					Str("reason", de.Error()).
					Msg("authentication failed")
				writeError(w, r, status, de)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, de *model.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		Detail:        de.Detail,
		CorrelationID: RequestIDFromContext(r.Context()),
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
