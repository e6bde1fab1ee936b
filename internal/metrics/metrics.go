// Package metrics exposes Prometheus collectors for the order engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portalpay"

// Order outcomes.
const (
	OrderCreated  = "created"
	OrderDegraded = "degraded"
	OrderRejected = "rejected"
	OrderQuoted   = "quoted"
)

// Status update outcomes.
const (
	StatusApplied  = "applied"
	StatusIgnored  = "ignored"
	StatusDegraded = "degraded"
	StatusNotFound = "not_found"
	StatusFailed   = "failed"
)

// Metrics holds the service collectors.
type Metrics struct {
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	Orders        *prometheus.CounterVec
	StatusUpdates *prometheus.CounterVec
}

// New creates and registers the collectors on reg. queueDepth, when non-nil,
// is sampled at scrape time for the degraded queue gauge.
func New(reg prometheus.Registerer, queueDepth func() int) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Orders priced, by outcome.",
		}, []string{"outcome"}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_status_updates_total",
			Help:      "Receipt status updates, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.Orders, m.StatusUpdates)

	if queueDepth != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "degraded_queue_depth",
			Help:      "Receipts and status updates waiting for the store.",
		}, func() float64 { return float64(queueDepth()) }))
	}
	return m
}

// NewNop returns collectors registered nowhere, for tests and tools.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry(), nil)
}

// ObserveOrder counts an order outcome. A nil receiver is a no-op.
func (m *Metrics) ObserveOrder(outcome string) {
	if m == nil {
		return
	}
	m.Orders.WithLabelValues(outcome).Inc()
}

// ObserveStatus counts a status update outcome. A nil receiver is a no-op.
func (m *Metrics) ObserveStatus(outcome string) {
	if m == nil {
		return
	}
	m.StatusUpdates.WithLabelValues(outcome).Inc()
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
