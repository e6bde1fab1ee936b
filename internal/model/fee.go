package model

import "github.com/shopspring/decimal"

// MaxBps is 100% expressed in basis points.
const MaxBps = 10000

// FeeSplitConfig divides the processing fee between the parties.
type FeeSplitConfig struct {
	PlatformBps int   `json:"platformBps"`
	PartnerBps  int   `json:"partnerBps"`
	MerchantBps int   `json:"merchantBps"`
	AgentsBps   []int `json:"agentsBps,omitempty"`
}

// TotalBps sums every party's share.
func (c FeeSplitConfig) TotalBps() int {
	total := c.PlatformBps + c.PartnerBps + c.MerchantBps
	for _, a := range c.AgentsBps {
		total += a
	}
	return total
}

// Validate enforces the per-party range and the 10000 bps ceiling.
func (c FeeSplitConfig) Validate() error {
	values := append([]int{c.PlatformBps, c.PartnerBps, c.MerchantBps}, c.AgentsBps...)
	for _, v := range values {
		if v < 0 || v > MaxBps {
			return ErrSplitConfigInvalid
		}
	}
	if c.TotalBps() > MaxBps {
		return ErrSplitConfigInvalid
	}
	return nil
}

// Normalize clamps each share into [0,10000] and rejects configs whose sum
// still exceeds 10000. It is applied when a config is written, never when a
// fee is split.
func (c FeeSplitConfig) Normalize() (FeeSplitConfig, error) {
	out := FeeSplitConfig{
		PlatformBps: clampBps(c.PlatformBps),
		PartnerBps:  clampBps(c.PartnerBps),
		MerchantBps: clampBps(c.MerchantBps),
	}
	if len(c.AgentsBps) > 0 {
		out.AgentsBps = make([]int, len(c.AgentsBps))
		for i, a := range c.AgentsBps {
			out.AgentsBps[i] = clampBps(a)
		}
	}
	if out.TotalBps() > MaxBps {
		return FeeSplitConfig{}, ErrSplitConfigInvalid
	}
	return out, nil
}

func clampBps(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxBps {
		return MaxBps
	}
	return v
}

// BrandFeeConfig is the brand-level platform/partner fee.
type BrandFeeConfig struct {
	PlatformBps int `json:"platformBps"`
	PartnerBps  int `json:"partnerBps"`
}

// Normalize clamps both shares into [0,10000] and rejects a pair whose sum
// still exceeds 10000, so a stored brand fee always splits cleanly.
func (c BrandFeeConfig) Normalize() (BrandFeeConfig, error) {
	split, err := FeeSplitConfig{PlatformBps: c.PlatformBps, PartnerBps: c.PartnerBps}.Normalize()
	if err != nil {
		return BrandFeeConfig{}, err
	}
	return BrandFeeConfig{PlatformBps: split.PlatformBps, PartnerBps: split.PartnerBps}, nil
}

// FeeSplit is the computed division of a fee in minor units.
type FeeSplit struct {
	PlatformMinor int64   `json:"platformMinor"`
	PartnerMinor  int64   `json:"partnerMinor"`
	MerchantMinor int64   `json:"merchantMinor"`
	AgentsMinor   []int64 `json:"agentsMinor,omitempty"`
}

// Total sums every share.
func (s FeeSplit) Total() int64 {
	total := s.PlatformMinor + s.PartnerMinor + s.MerchantMinor
	for _, a := range s.AgentsMinor {
		total += a
	}
	return total
}

// FeeInputs is the part of a tenant's effective configuration the fee
// splitter consumes.
type FeeInputs struct {
	BasePlatformFeePct *decimal.Decimal
	SplitConfig        *FeeSplitConfig
	BrandFee           *BrandFeeConfig
	ProcessingFeePct   decimal.Decimal
	DefaultFeePct      decimal.Decimal
}
