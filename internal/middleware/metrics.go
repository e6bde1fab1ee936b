package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/metrics"
)

// Instrument records request counts and latency per matched route pattern.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			// ServeMux sets Pattern on the request it routes.
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rw.statusCode)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
