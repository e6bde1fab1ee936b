package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenantConfig is a merchant's stored site configuration. An empty BrandKey
// marks a legacy document written before brands existed.
type TenantConfig struct {
	Wallet             string           `json:"wallet"`
	BrandKey           string           `json:"brandKey,omitempty"`
	SplitAddress       string           `json:"splitAddress,omitempty"`
	Split              *FeeSplitConfig  `json:"splitConfig,omitempty"`
	BasePlatformFeePct *decimal.Decimal `json:"basePlatformFeePct,omitempty"`
	ProcessingFeePct   decimal.Decimal  `json:"processingFeePct"`
	Tax                TaxConfig        `json:"taxConfig"`
	SettledStatuses    []string         `json:"settledStatuses,omitempty"`
	Currency           string           `json:"storeCurrency,omitempty"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}
