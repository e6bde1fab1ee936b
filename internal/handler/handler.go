package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/middleware"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var (
	errInvalidJSON      = model.NewDomainError(model.ErrCodeInvalidJSON, "request body must be valid JSON")
	errMethodNotAllowed = model.NewDomainError(model.ErrCodeMethodNotAllowed, "method not allowed")
	errInternal         = model.NewDomainError(model.ErrCodeInternalError, "internal server error")
)

// statusByCode maps domain error codes to HTTP status codes. Codes not
// listed are internal errors.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:            http.StatusBadRequest,
	model.ErrCodeWalletRequired:         http.StatusBadRequest,
	model.ErrCodeItemsRequired:          http.StatusBadRequest,
	model.ErrCodeInvalidAmount:          http.StatusBadRequest,
	model.ErrCodeInventoryNotFound:      http.StatusBadRequest,
	model.ErrCodeStatusRequired:         http.StatusBadRequest,
	model.ErrCodeReceiptIDRequired:      http.StatusBadRequest,
	model.ErrCodeUnauthorised:           http.StatusUnauthorized,
	model.ErrCodeForbidden:              http.StatusForbidden,
	model.ErrCodeSplitRequired:          http.StatusForbidden,
	model.ErrCodeSplitConfigInvalid:     http.StatusForbidden,
	model.ErrCodeReceiptNotFound:        http.StatusNotFound,
	model.ErrCodeMethodNotAllowed:       http.StatusMethodNotAllowed,
	model.ErrCodeReceiptVersionConflict: http.StatusConflict,
	model.ErrCodeReceiptExists:          http.StatusConflict,
	model.ErrCodeRateLimited:            http.StatusTooManyRequests,
	model.ErrCodeStoreUnavailable:       http.StatusServiceUnavailable,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps err to a status code and writes the error body. Errors
// without a domain code are logged and reported as internal errors.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	de, ok := model.AsDomainError(err)
	status, known := http.StatusInternalServerError, false
	if ok {
		status, known = statusByCode[de.Code]
	}
	if !known {
		status = http.StatusInternalServerError
		de = errInternal
	}

	requestID := middleware.RequestIDFromContext(r.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("request_id", requestID).
		Str("code", de.Code).
		Int("status", status).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		Detail:        de.Detail,
		CorrelationID: requestID,
	})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errInvalidJSON.WithDetail("body too large")
		}
		return errInvalidJSON
	}
	return nil
}

// requestWallet is the merchant a request acts for: the X-Wallet header
// when the caller may act on it, else the principal's own wallet.
func requestWallet(r *http.Request) (string, error) {
	header := auth.NormalizeWallet(r.Header.Get(auth.HeaderWallet))
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return header, nil
	}
	if header == "" {
		return p.Wallet, nil
	}
	if !p.CanActOn(header) {
		return "", model.ErrForbidden.WithDetail("wallet mismatch")
	}
	return header, nil
}
