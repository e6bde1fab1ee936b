package model

import "time"

// Receipt statuses known to the engine. Tenants may add their own.
const (
	StatusGenerated           = "generated"
	StatusPending             = "pending"
	StatusCheckoutInitialized = "checkout_initialized"
	StatusCheckoutReady       = "checkout_ready"
	StatusLinkOpened          = "link_opened"
	StatusBuyerLoggedIn       = "buyer_logged_in"
	StatusCheckoutSuccess     = "checkout_success"
	StatusPaid                = "paid"
	StatusTxMined             = "tx_mined"
	StatusRecipientValidated  = "recipient_validated"
	StatusReconciled          = "reconciled"
	StatusReceiptClaimed      = "receipt_claimed"
	StatusRefunded            = "refunded"
)

// TTLDisabled marks a receipt the store must never expire.
const TTLDisabled int64 = -1

// Line kinds on a receipt.
const (
	LineKindItem     = "item"
	LineKindDiscount = "discount"
	LineKindTax      = "tax"
	LineKindFee      = "fee"
)

// ReceiptLine is one row of a receipt. Adjustment rows (discount, tax, fee)
// carry no item reference.
type ReceiptLine struct {
	Kind           string     `json:"kind"`
	Label          string     `json:"label"`
	ItemID         string     `json:"itemId,omitempty"`
	SKU            string     `json:"sku,omitempty"`
	Quantity       int        `json:"qty,omitempty"`
	UnitPriceMinor int64      `json:"unitPriceMinor,omitempty"`
	PriceMinor     int64      `json:"priceMinor"`
	Taxable        bool       `json:"taxable,omitempty"`
	Modifiers      []Modifier `json:"modifiers,omitempty"`
	Thumb          string     `json:"thumb,omitempty"`
}

// StatusEntry is one appended status transition.
type StatusEntry struct {
	Status string    `json:"status"`
	Ts     time.Time `json:"ts"`
}

// Totals is the pricing breakdown behind a receipt's total.
type Totals struct {
	GrossSubtotalMinor      int64 `json:"grossSubtotalMinor"`
	ItemDiscountMinor       int64 `json:"itemDiscountMinor"`
	CouponDiscountMinor     int64 `json:"couponDiscountMinor"`
	DiscountMinor           int64 `json:"discountMinor"`
	DiscountedSubtotalMinor int64 `json:"discountedSubtotalMinor"`
	TaxableSubtotalMinor    int64 `json:"taxableSubtotalMinor"`
	TaxableBaseMinor        int64 `json:"taxableBaseMinor"`
	TaxMinor                int64 `json:"taxMinor"`
	FeeBaseMinor            int64 `json:"feeBaseMinor"`
	FeeMinor                int64 `json:"feeMinor"`
	TotalMinor              int64 `json:"totalMinor"`
}

// Receipt is the immutable financial record of an order.
type Receipt struct {
	ReceiptID        string         `json:"receiptId"`
	Wallet           string         `json:"wallet"`
	BrandKey         string         `json:"brandKey,omitempty"`
	LineItems        []ReceiptLine  `json:"lineItems"`
	TotalMinor       int64          `json:"totalMinor"`
	Currency         string         `json:"currency"`
	Status           string         `json:"status"`
	StatusHistory    []StatusEntry  `json:"statusHistory"`
	TaxRate          string         `json:"taxRate"`
	TaxComponents    []TaxComponent `json:"taxComponents,omitempty"`
	JurisdictionCode string         `json:"jurisdictionCode,omitempty"`
	DiscountID       string         `json:"discountId,omitempty"`
	DiscountCode     string         `json:"discountCode,omitempty"`
	Totals           Totals         `json:"totals"`
	FeePct           string         `json:"feePct"`
	FeeSplit         FeeSplit       `json:"feeSplit"`
	SplitAddress     string         `json:"splitAddress,omitempty"`
	TableNumber      string         `json:"tableNumber,omitempty"`
	Note             string         `json:"note,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	LastUpdatedAt    time.Time      `json:"lastUpdatedAt"`
	TransactionHash  string         `json:"transactionHash,omitempty"`
	BuyerWallet      string         `json:"buyerWallet,omitempty"`
	TTL              int64          `json:"ttl"`
	Version          int64          `json:"version"`
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}
	c := *r
	c.LineItems = append([]ReceiptLine(nil), r.LineItems...)
	c.StatusHistory = append([]StatusEntry(nil), r.StatusHistory...)
	c.TaxComponents = append([]TaxComponent(nil), r.TaxComponents...)
	c.FeeSplit.AgentsMinor = append([]int64(nil), r.FeeSplit.AgentsMinor...)
	return &c
}

// StatusUpdate is an incoming status signal for an existing receipt.
type StatusUpdate struct {
	ReceiptID   string `json:"receiptId"`
	Wallet      string `json:"wallet"`
	Status      string `json:"status"`
	TxHash      string `json:"txHash,omitempty"`
	BuyerWallet string `json:"buyerWallet,omitempty"`
}

// StatusResult reports how a status update was handled.
type StatusResult struct {
	OK       bool   `json:"ok"`
	Ignored  bool   `json:"ignored,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Reasons reported on non-error outcomes.
const (
	ReasonAlreadySettled   = "already_settled"
	ReasonStoreUnavailable = "store_unavailable"
)
