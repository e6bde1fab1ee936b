package model

import "github.com/shopspring/decimal"

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Items            []LineItemRequest `json:"items"`
	JurisdictionCode string            `json:"jurisdictionCode,omitempty"`
	TaxRate          *decimal.Decimal  `json:"taxRate,omitempty"`
	TaxComponents    []string          `json:"taxComponents,omitempty"`
	CouponCode       string            `json:"couponCode,omitempty"`
	TableNumber      string            `json:"tableNumber,omitempty"`
	Note             string            `json:"note,omitempty"`
	// InitialStatus lets alternate entry points create a receipt as pending or paid.
	InitialStatus string `json:"-"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	OK         bool     `json:"ok"`
	Degraded   bool     `json:"degraded,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Receipt    *Receipt `json:"receipt"`
	PortalLink string   `json:"portalLink,omitempty"`
}

// QuoteResponse is a priced cart that was not persisted.
type QuoteResponse struct {
	OK        bool          `json:"ok"`
	Currency  string        `json:"currency"`
	LineItems []ReceiptLine `json:"lineItems"`
	Totals    Totals        `json:"totals"`
	TaxRate   string        `json:"taxRate"`
	FeeSplit  FeeSplit      `json:"feeSplit"`
}

// ReceiptListResponse is the body of GET /receipts.
type ReceiptListResponse struct {
	OK       bool      `json:"ok"`
	Receipts []Receipt `json:"receipts"`
}

// ReceiptResponse is the body of GET /receipts/{id}.
type ReceiptResponse struct {
	OK      bool     `json:"ok"`
	Receipt *Receipt `json:"receipt"`
}
