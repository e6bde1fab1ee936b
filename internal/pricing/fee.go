package pricing

import (
	"sort"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/shopspring/decimal"
)

// FeeSource records where the base platform fee percentage came from.
type FeeSource string

const (
	FeeSourceOverride    FeeSource = "override"
	FeeSourceSplitConfig FeeSource = "split_config"
	FeeSourceBrand       FeeSource = "brand"
	FeeSourceDefault     FeeSource = "default"
)

// DefaultPlatformFeePct is used when neither the tenant nor the environment
// configures a base fee.
var DefaultPlatformFeePct = decimal.NewFromFloat(0.5)

// ResolveBaseFeePct walks override → split config → brand config → default.
func ResolveBaseFeePct(in model.FeeInputs) (decimal.Decimal, FeeSource) {
	if in.BasePlatformFeePct != nil {
		return decimal.Max(*in.BasePlatformFeePct, decimal.Zero), FeeSourceOverride
	}
	if in.SplitConfig != nil {
		bps := in.SplitConfig.PlatformBps + in.SplitConfig.PartnerBps
		for _, a := range in.SplitConfig.AgentsBps {
			bps += a
		}
		return bpsToPct(bps), FeeSourceSplitConfig
	}
	if in.BrandFee != nil {
		return bpsToPct(in.BrandFee.PlatformBps + in.BrandFee.PartnerBps), FeeSourceBrand
	}
	if !in.DefaultFeePct.IsZero() {
		return in.DefaultFeePct, FeeSourceDefault
	}
	return DefaultPlatformFeePct, FeeSourceDefault
}

// TotalFeePct adds the merchant's non-negative add-on to the base fee.
func TotalFeePct(in model.FeeInputs) decimal.Decimal {
	base, _ := ResolveBaseFeePct(in)
	return base.Add(decimal.Max(in.ProcessingFeePct, decimal.Zero))
}

// ComputeFee returns round(feeBase × pct / 100).
func ComputeFee(feeBaseMinor int64, totalPct decimal.Decimal) int64 {
	return ApplyPercent(feeBaseMinor, totalPct)
}

// EffectiveSplit picks the split used to divide the fee: the tenant split,
// else the brand platform/partner shares, else everything to the platform.
func EffectiveSplit(in model.FeeInputs) model.FeeSplitConfig {
	if in.SplitConfig != nil {
		return *in.SplitConfig
	}
	if in.BrandFee != nil {
		return model.FeeSplitConfig{PlatformBps: in.BrandFee.PlatformBps, PartnerBps: in.BrandFee.PartnerBps}
	}
	return model.FeeSplitConfig{PlatformBps: model.MaxBps}
}

// SplitFee divides feeMinor in proportion to each party's bps of the total.
// Shares are floored and the leftover minor units go to the largest
// remainders, so the shares always sum to feeMinor. A config with zero total
// bps attributes the whole fee to the platform.
func SplitFee(feeMinor int64, cfg model.FeeSplitConfig) (model.FeeSplit, error) {
	if err := cfg.Validate(); err != nil {
		return model.FeeSplit{}, err
	}

	bps := append([]int{cfg.PlatformBps, cfg.PartnerBps, cfg.MerchantBps}, cfg.AgentsBps...)
	total := int64(cfg.TotalBps())
	shares := make([]int64, len(bps))

	if total == 0 || feeMinor <= 0 {
		shares[0] = feeMinor
	} else {
		rems := make([]int64, len(bps))
		allocated := int64(0)
		fee, denom := decimal.NewFromInt(feeMinor), decimal.NewFromInt(total)
		for i, b := range bps {
			q, r := fee.Mul(decimal.NewFromInt(int64(b))).QuoRem(denom, 0)
			shares[i] = q.IntPart()
			rems[i] = r.IntPart()
			allocated += shares[i]
		}
		order := make([]int, len(bps))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return rems[order[a]] > rems[order[b]] })
		for k := int64(0); k < feeMinor-allocated; k++ {
			shares[order[k%int64(len(order))]]++
		}
	}

	split := model.FeeSplit{
		PlatformMinor: shares[0],
		PartnerMinor:  shares[1],
		MerchantMinor: shares[2],
	}
	if len(cfg.AgentsBps) > 0 {
		split.AgentsMinor = shares[3:]
	}
	return split, nil
}

func bpsToPct(bps int) decimal.Decimal {
	return decimal.NewFromInt(int64(bps)).Div(hundred)
}
