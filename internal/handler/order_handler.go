package handler

import (
	"net/http"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/service"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, wallet, ok := h.readOrder(w, r)
	if !ok {
		return
	}

	resp, err := h.service.CreateOrder(r.Context(), tenant.FromRequest(r), wallet, req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Quote handles POST /orders/quote requests.
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	req, wallet, ok := h.readOrder(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Quote(r.Context(), tenant.FromRequest(r), wallet, req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) readOrder(w http.ResponseWriter, r *http.Request) (*model.OrderRequest, string, bool) {
	if r.Method != http.MethodPost {
		writeError(w, r, errMethodNotAllowed, h.logger)
		return nil, "", false
	}

	wallet, err := requestWallet(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return nil, "", false
	}

	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return nil, "", false
	}
	return &req, wallet, true
}
