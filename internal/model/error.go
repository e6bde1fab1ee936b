package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	OK            bool   `json:"ok"`
	Error         string `json:"error"`
	Message       string `json:"message"`
	Detail        string `json:"detail,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "invalid_json"
	ErrCodeWalletRequired         = "wallet_required"
	ErrCodeItemsRequired          = "items_required"
	ErrCodeInvalidAmount          = "invalid_amount"
	ErrCodeInventoryNotFound      = "inventory_item_not_found"
	ErrCodeStatusRequired         = "status_required"
	ErrCodeReceiptIDRequired      = "receipt_id_required"
	ErrCodeReceiptNotFound        = "receipt_not_found"
	ErrCodeUnauthorised           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeSplitRequired          = "split_required"
	ErrCodeSplitConfigInvalid     = "split_config_invalid"
	ErrCodeRateLimited            = "rate_limited"
	ErrCodeStoreUnavailable       = "store_unavailable"
	ErrCodeInternalError          = "internal_error"
	ErrCodeMethodNotAllowed       = "method_not_allowed"
	ErrCodeReceiptVersionConflict = "receipt_version_conflict"
	ErrCodeReceiptExists          = "receipt_exists"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	// Detail carries the offending value, e.g. the unresolved id or sku.
	Detail string
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Is matches domain errors by code so wrapped copies with a detail still
// compare equal to the sentinel.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of the error carrying detail.
func (e *DomainError) WithDetail(detail string) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Detail: detail}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError unwraps err to a *DomainError if one is in the chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrWalletRequired     = NewDomainError(ErrCodeWalletRequired, "merchant wallet is required")
	ErrItemsRequired      = NewDomainError(ErrCodeItemsRequired, "order must contain at least one item")
	ErrInvalidAmount      = NewDomainError(ErrCodeInvalidAmount, "quantities and amounts must be positive")
	ErrInventoryNotFound  = NewDomainError(ErrCodeInventoryNotFound, "inventory item not found")
	ErrStatusRequired     = NewDomainError(ErrCodeStatusRequired, "status is required")
	ErrReceiptIDRequired  = NewDomainError(ErrCodeReceiptIDRequired, "receiptId is required")
	ErrReceiptNotFound    = NewDomainError(ErrCodeReceiptNotFound, "receipt not found")
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "authentication required")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "insufficient permissions")
	ErrSplitRequired      = NewDomainError(ErrCodeSplitRequired, "payout split address must be configured before accepting orders")
	ErrSplitConfigInvalid = NewDomainError(ErrCodeSplitConfigInvalid, "fee split basis points must each be within 0..10000 and sum to at most 10000")
	ErrStoreUnavailable   = NewDomainError(ErrCodeStoreUnavailable, "receipt store unavailable")
	ErrVersionConflict    = NewDomainError(ErrCodeReceiptVersionConflict, "receipt was modified concurrently")
	ErrReceiptExists      = NewDomainError(ErrCodeReceiptExists, "receipt already exists")
)
