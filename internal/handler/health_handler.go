package handler

import (
	"net/http"
)

// HealthHandler reports liveness and the degraded queue depth.
type HealthHandler struct {
	queueDepth func() int
}

// NewHealthHandler creates a health handler. queueDepth may be nil.
func NewHealthHandler(queueDepth func() int) *HealthHandler {
	return &HealthHandler{queueDepth: queueDepth}
}

type healthResponse struct {
	Status     string `json:"status"`
	Degraded   bool   `json:"degraded"`
	QueueDepth int    `json:"queueDepth"`
}

// Health handles GET /health requests. A non-empty degraded queue is
// reported but does not fail the check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy"}
	if h.queueDepth != nil {
		resp.QueueDepth = h.queueDepth()
		resp.Degraded = resp.QueueDepth > 0
	}
	writeJSON(w, http.StatusOK, resp)
}
