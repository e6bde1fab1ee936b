package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a discount's value is interpreted.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
	DiscountBuyXGetY    DiscountType = "buy_x_get_y"
)

// DiscountScope selects which lines a discount targets.
type DiscountScope string

const (
	AppliesToAll        DiscountScope = "all"
	AppliesToCollection DiscountScope = "collection"
	AppliesToProduct    DiscountScope = "product"
)

// MinRequirement gates a discount on an aggregate amount or quantity.
type MinRequirement string

const (
	MinRequirementNone     MinRequirement = "none"
	MinRequirementAmount   MinRequirement = "amount"
	MinRequirementQuantity MinRequirement = "quantity"
)

// DiscountStatus is the merchant-controlled enable flag.
type DiscountStatus string

const (
	DiscountActive   DiscountStatus = "active"
	DiscountInactive DiscountStatus = "inactive"
)

// Discount is an automatic discount or, when Code is set, an order-level coupon.
//
// Value is a percent (10 = 10%) for percentage discounts and minor units per
// unit for fixed_amount discounts. MinRequirementValue is minor units for
// amount requirements and a unit count for quantity requirements.
type Discount struct {
	ID                  string          `json:"id" db:"id"`
	Wallet              string          `json:"wallet" db:"wallet"`
	Code                string          `json:"code,omitempty" db:"code"`
	Title               string          `json:"title,omitempty" db:"title"`
	Type                DiscountType    `json:"type" db:"type"`
	AppliesTo           DiscountScope   `json:"appliesTo" db:"applies_to"`
	AppliesToIDs        []string        `json:"appliesToIds,omitempty" db:"applies_to_ids"`
	MinRequirement      MinRequirement  `json:"minRequirement" db:"min_requirement"`
	MinRequirementValue int64           `json:"minRequirementValue" db:"min_requirement_value"`
	Value               decimal.Decimal `json:"value" db:"value"`
	BuyQuantity         int             `json:"buyQuantity,omitempty" db:"buy_quantity"`
	GetQuantity         int             `json:"getQuantity,omitempty" db:"get_quantity"`
	StartDate           time.Time       `json:"startDate" db:"start_date"`
	EndDate             *time.Time      `json:"endDate,omitempty" db:"end_date"`
	UsedCount           int64           `json:"usedCount" db:"used_count"`
	UsageLimit          int64           `json:"usageLimit,omitempty" db:"usage_limit"`
	Status              DiscountStatus  `json:"status" db:"status"`
}

// IsCoupon reports whether the discount is applied at order level by code.
func (d Discount) IsCoupon() bool {
	return d.Code != ""
}

// IsActiveAt reports whether the discount may be applied at t.
func (d Discount) IsActiveAt(t time.Time) bool {
	if d.Status != DiscountActive {
		return false
	}
	if !d.StartDate.IsZero() && t.Before(d.StartDate) {
		return false
	}
	if d.EndDate != nil && t.After(*d.EndDate) {
		return false
	}
	if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
		return false
	}
	return true
}

// Targets reports whether id is listed in AppliesToIDs.
func (d Discount) Targets(ids ...string) bool {
	for _, want := range d.AppliesToIDs {
		for _, id := range ids {
			if id != "" && id == want {
				return true
			}
		}
	}
	return false
}
