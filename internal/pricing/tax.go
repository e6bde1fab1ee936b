package pricing

import (
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/shopspring/decimal"
)

// TaxSource records which resolution step produced a rate.
type TaxSource string

const (
	TaxSourceOverride     TaxSource = "override"
	TaxSourceComponents   TaxSource = "components"
	TaxSourceJurisdiction TaxSource = "jurisdiction"
	TaxSourceDefault      TaxSource = "default"
	TaxSourceNone         TaxSource = "none"
)

// TaxRequest carries the order's explicit tax inputs.
type TaxRequest struct {
	RateOverride     *decimal.Decimal
	Components       []string
	JurisdictionCode string
}

// JurisdictionLookup finds a jurisdiction outside the tenant's own config,
// e.g. a shared rate table.
type JurisdictionLookup interface {
	Lookup(code string) (model.TaxJurisdiction, bool)
}

// TaxResolution is the effective rate and the components it was built from.
type TaxResolution struct {
	Rate             decimal.Decimal
	Components       []model.TaxComponent
	JurisdictionCode string
	Source           TaxSource
}

// ResolveTax picks the effective tax rate. First match wins: override,
// explicit components, jurisdiction flat rate, tenant default, zero.
func ResolveTax(req TaxRequest, cfg model.TaxConfig, shared JurisdictionLookup) TaxResolution {
	if req.RateOverride != nil && !req.RateOverride.IsNegative() && req.RateOverride.LessThanOrEqual(decimal.NewFromInt(1)) {
		return TaxResolution{Rate: *req.RateOverride, Source: TaxSourceOverride}
	}

	if req.JurisdictionCode != "" {
		if j, ok := lookupJurisdiction(req.JurisdictionCode, cfg, shared); ok {
			if len(req.Components) > 0 {
				rate, applied := sumComponents(j, req.Components)
				return TaxResolution{
					Rate:             clampRate(rate),
					Components:       applied,
					JurisdictionCode: j.Code,
					Source:           TaxSourceComponents,
				}
			}
			return TaxResolution{Rate: clampRate(j.Rate), JurisdictionCode: j.Code, Source: TaxSourceJurisdiction}
		}
	}

	if j, ok := lookupJurisdiction(cfg.DefaultJurisdictionCode, cfg, shared); ok {
		if len(j.Components) > 0 {
			rate := decimal.Zero
			for _, c := range j.Components {
				rate = rate.Add(c.Rate)
			}
			return TaxResolution{
				Rate:             clampRate(rate),
				Components:       append([]model.TaxComponent(nil), j.Components...),
				JurisdictionCode: j.Code,
				Source:           TaxSourceDefault,
			}
		}
		return TaxResolution{Rate: clampRate(j.Rate), JurisdictionCode: j.Code, Source: TaxSourceDefault}
	}

	return TaxResolution{Rate: decimal.Zero, Source: TaxSourceNone}
}

func lookupJurisdiction(code string, cfg model.TaxConfig, shared JurisdictionLookup) (model.TaxJurisdiction, bool) {
	if code == "" {
		return model.TaxJurisdiction{}, false
	}
	if j, ok := cfg.Jurisdiction(code); ok {
		return j, true
	}
	if shared != nil {
		return shared.Lookup(code)
	}
	return model.TaxJurisdiction{}, false
}

func sumComponents(j model.TaxJurisdiction, codes []string) (decimal.Decimal, []model.TaxComponent) {
	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	rate := decimal.Zero
	var applied []model.TaxComponent
	for _, c := range j.Components {
		if _, ok := want[c.Code]; ok {
			rate = rate.Add(c.Rate)
			applied = append(applied, c)
		}
	}
	return rate, applied
}

func clampRate(r decimal.Decimal) decimal.Decimal {
	return clampDecimal(r, decimal.Zero, decimal.NewFromInt(1))
}

// TaxAmounts is the taxable base and tax due on an order.
type TaxAmounts struct {
	TaxableSubtotalMinor int64
	TaxableBaseMinor     int64
	TaxMinor             int64
}

// ComputeTax taxes the taxable lines, scaled down by the order-wide discount
// ratio when a discount exists.
//
// The ratio is global rather than per line, so it is only exact when every
// discounted line shares the same taxability.
func ComputeTax(lines []model.ResolvedLine, disc DiscountResult, rate decimal.Decimal) TaxAmounts {
	var out TaxAmounts
	for _, l := range lines {
		if l.Item.Taxable {
			out.TaxableSubtotalMinor += l.AmountMinor()
		}
	}

	out.TaxableBaseMinor = out.TaxableSubtotalMinor
	if disc.TotalDiscountMinor > 0 && disc.GrossSubtotalMinor > 0 {
		out.TaxableBaseMinor = RoundMinor(
			decimal.NewFromInt(out.TaxableSubtotalMinor).
				Mul(decimal.NewFromInt(disc.DiscountedSubtotalMinor)).
				Div(decimal.NewFromInt(disc.GrossSubtotalMinor)),
		)
	}

	out.TaxMinor = ApplyRate(out.TaxableBaseMinor, rate)
	return out
}
