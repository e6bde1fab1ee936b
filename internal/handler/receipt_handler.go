package handler

import (
	"net/http"
	"strconv"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/service"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/rs/zerolog"
)

// ReceiptHandler handles receipt lookups and status updates.
type ReceiptHandler struct {
	service service.ReceiptService
	logger  zerolog.Logger
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(service service.ReceiptService, logger zerolog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		service: service,
		logger:  logger.With().Str("handler", "receipt").Logger(),
	}
}

// UpdateStatus handles POST /receipts/status requests.
func (h *ReceiptHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, errMethodNotAllowed, h.logger)
		return
	}

	var u model.StatusUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	p, _ := auth.FromContext(r.Context())
	res, err := h.service.UpdateStatus(r.Context(), tenant.FromRequest(r), p, u)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// List handles GET /receipts?limit=n requests.
func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, errMethodNotAllowed, h.logger)
		return
	}

	wallet, err := requestWallet(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	// An unparsable limit falls back to the configured cap.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	receipts, err := h.service.List(r.Context(), wallet, limit)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ReceiptListResponse{OK: true, Receipts: receipts})
}

// GetByID handles GET /receipts/{id} requests.
func (h *ReceiptHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, errMethodNotAllowed, h.logger)
		return
	}

	wallet, err := requestWallet(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	rec, err := h.service.Get(r.Context(), wallet, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ReceiptResponse{OK: true, Receipt: rec})
}
