package model

// InventoryItem is a priced catalog record owned by a merchant.
type InventoryItem struct {
	ID          string   `json:"id" db:"id"`
	SKU         string   `json:"sku" db:"sku"`
	Wallet      string   `json:"wallet" db:"wallet"`
	BrandKey    string   `json:"brandKey,omitempty" db:"brand_key"`
	Name        string   `json:"name" db:"name"`
	PriceMinor  int64    `json:"priceMinor" db:"price_minor"`
	Taxable     bool     `json:"taxable" db:"taxable"`
	Images      []string `json:"images,omitempty" db:"images"`
	Collections []string `json:"collections,omitempty" db:"collections"`
}

// Modifier is a selected option that adjusts a line's unit price.
type Modifier struct {
	Name                 string `json:"name"`
	PriceAdjustmentMinor int64  `json:"priceAdjustmentMinor"`
	Quantity             int    `json:"quantity"`
}

// EffectiveQuantity treats an unset modifier quantity as one.
func (m Modifier) EffectiveQuantity() int {
	if m.Quantity < 1 {
		return 1
	}
	return m.Quantity
}

// LineItemRequest is a client-supplied cart line.
type LineItemRequest struct {
	ID                string     `json:"id,omitempty"`
	SKU               string     `json:"sku,omitempty"`
	Quantity          int        `json:"qty"`
	SelectedModifiers []Modifier `json:"selectedModifiers,omitempty"`
}

// Ref returns the identifier used in error messages.
func (l LineItemRequest) Ref() string {
	if l.ID != "" {
		return l.ID
	}
	return l.SKU
}

// ResolvedLine is a cart line bound to its catalog record.
type ResolvedLine struct {
	Item           InventoryItem
	Quantity       int
	Modifiers      []Modifier
	UnitPriceMinor int64
}

// AmountMinor returns unit price times quantity.
func (l ResolvedLine) AmountMinor() int64 {
	return l.UnitPriceMinor * int64(l.Quantity)
}
