package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Outcomes(t *testing.T) {
	m := New(prometheus.NewRegistry(), nil)

	m.ObserveOrder(OrderCreated)
	m.ObserveOrder(OrderCreated)
	m.ObserveOrder(OrderDegraded)
	m.ObserveStatus(StatusIgnored)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Orders.WithLabelValues(OrderCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Orders.WithLabelValues(OrderDegraded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusUpdates.WithLabelValues(StatusIgnored)))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOrder(OrderCreated)
		m.ObserveStatus(StatusApplied)
	})
}

func TestHandler_ExposesQueueDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	depth := 3
	New(reg, func() int { return depth })

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portalpay_degraded_queue_depth 3")
}
