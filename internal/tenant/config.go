package tenant

import (
	"regexp"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/shopspring/decimal"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether addr is a 20-byte hex payout address.
func ValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}

// EffectiveConfig is the merged configuration an order is priced with.
type EffectiveConfig struct {
	Wallet             string                `json:"wallet"`
	BrandKey           string                `json:"brandKey"`
	Source             string                `json:"source"`
	SplitAddress       string                `json:"splitAddress,omitempty"`
	Split              *model.FeeSplitConfig `json:"splitConfig,omitempty"`
	BrandFee           *model.BrandFeeConfig `json:"brandFee,omitempty"`
	BasePlatformFeePct *decimal.Decimal      `json:"basePlatformFeePct,omitempty"`
	ProcessingFeePct   decimal.Decimal       `json:"processingFeePct"`
	Tax                model.TaxConfig       `json:"taxConfig"`
	SettledStatuses    []string              `json:"settledStatuses,omitempty"`
	Currency           string                `json:"currency"`
}

// FeeInputs extracts what the fee splitter needs.
func (c *EffectiveConfig) FeeInputs(defaultFeePct decimal.Decimal) model.FeeInputs {
	return model.FeeInputs{
		BasePlatformFeePct: c.BasePlatformFeePct,
		SplitConfig:        c.Split,
		BrandFee:           c.BrandFee,
		ProcessingFeePct:   c.ProcessingFeePct,
		DefaultFeePct:      defaultFeePct,
	}
}

// RequireSplit fails with ErrSplitRequired when a non-default brand has no
// valid payout address.
func (c *EffectiveConfig) RequireSplit(defaultBrand string) error {
	if c.BrandKey == "" || c.BrandKey == defaultBrand {
		return nil
	}
	if !ValidAddress(c.SplitAddress) {
		return model.ErrSplitRequired.WithDetail(c.BrandKey)
	}
	return nil
}

func fromDocument(doc *model.TenantConfig, wallet, brand, source, currency string) *EffectiveConfig {
	cfg := &EffectiveConfig{
		Wallet:             wallet,
		BrandKey:           brand,
		Source:             source,
		SplitAddress:       doc.SplitAddress,
		Split:              doc.Split,
		BasePlatformFeePct: doc.BasePlatformFeePct,
		ProcessingFeePct:   decimal.Max(doc.ProcessingFeePct, decimal.Zero),
		Tax:                doc.Tax,
		SettledStatuses:    doc.SettledStatuses,
		Currency:           doc.Currency,
	}
	if doc.BrandKey != "" {
		cfg.BrandKey = doc.BrandKey
	}
	if cfg.Currency == "" {
		cfg.Currency = currency
	}
	return cfg
}
