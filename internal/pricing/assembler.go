package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/shopspring/decimal"
)

// Adjustment line labels, in the order they are appended.
const (
	LabelDiscount = "Discount"
	LabelTax      = "Tax"
	LabelFee      = "Processing Fee"
)

// Input is everything needed to price one cart.
type Input struct {
	Lines         []model.ResolvedLine
	Automatic     []model.Discount
	Coupon        *model.Discount
	Tax           TaxRequest
	TaxConfig     model.TaxConfig
	Jurisdictions JurisdictionLookup
	Fee           model.FeeInputs
	Now           time.Time
}

// Quote is a fully priced cart ready to become a receipt.
type Quote struct {
	Lines    []model.ReceiptLine
	Totals   model.Totals
	Discount DiscountResult
	Tax      TaxResolution
	FeePct   decimal.Decimal
	FeeSplit model.FeeSplit
}

// Price runs discounts, tax and fee over the lines and assembles the quote.
// It is pure: the same input always yields the same quote.
func Price(in Input) (*Quote, error) {
	disc := ApplyDiscounts(in.Lines, in.Automatic, in.Coupon, in.Now)

	taxRes := ResolveTax(in.Tax, in.TaxConfig, in.Jurisdictions)
	tax := ComputeTax(in.Lines, disc, taxRes.Rate)

	feePct := TotalFeePct(in.Fee)
	feeBase := disc.DiscountedSubtotalMinor + tax.TaxMinor
	fee := ComputeFee(feeBase, feePct)

	split, err := SplitFee(fee, EffectiveSplit(in.Fee))
	if err != nil {
		return nil, fmt.Errorf("failed to split processing fee: %w", err)
	}

	totals := model.Totals{
		GrossSubtotalMinor:      disc.GrossSubtotalMinor,
		ItemDiscountMinor:       disc.ItemSavingsMinor,
		CouponDiscountMinor:     disc.CouponSavingsMinor,
		DiscountMinor:           disc.TotalDiscountMinor,
		DiscountedSubtotalMinor: disc.DiscountedSubtotalMinor,
		TaxableSubtotalMinor:    tax.TaxableSubtotalMinor,
		TaxableBaseMinor:        tax.TaxableBaseMinor,
		TaxMinor:                tax.TaxMinor,
		FeeBaseMinor:            feeBase,
		FeeMinor:                fee,
		TotalMinor:              disc.DiscountedSubtotalMinor + tax.TaxMinor + fee,
	}

	return &Quote{
		Lines:    Assemble(in.Lines, totals),
		Totals:   totals,
		Discount: disc,
		Tax:      taxRes,
		FeePct:   feePct,
		FeeSplit: split,
	}, nil
}

// Assemble lists the priced item lines followed by the discount, tax and
// fee adjustments, each only when non-zero.
func Assemble(lines []model.ResolvedLine, totals model.Totals) []model.ReceiptLine {
	out := make([]model.ReceiptLine, 0, len(lines)+3)
	for _, l := range lines {
		var thumb string
		if len(l.Item.Images) > 0 {
			thumb = l.Item.Images[0]
		}
		out = append(out, model.ReceiptLine{
			Kind:           model.LineKindItem,
			Label:          lineLabel(l),
			ItemID:         l.Item.ID,
			SKU:            l.Item.SKU,
			Quantity:       l.Quantity,
			UnitPriceMinor: l.UnitPriceMinor,
			PriceMinor:     l.AmountMinor(),
			Taxable:        l.Item.Taxable,
			Modifiers:      l.Modifiers,
			Thumb:          thumb,
		})
	}

	if totals.DiscountMinor > 0 {
		out = append(out, model.ReceiptLine{Kind: model.LineKindDiscount, Label: LabelDiscount, PriceMinor: -totals.DiscountMinor})
	}
	if totals.TaxMinor > 0 {
		out = append(out, model.ReceiptLine{Kind: model.LineKindTax, Label: LabelTax, PriceMinor: totals.TaxMinor})
	}
	if totals.FeeMinor > 0 {
		out = append(out, model.ReceiptLine{Kind: model.LineKindFee, Label: LabelFee, PriceMinor: totals.FeeMinor})
	}
	return out
}

func lineLabel(l model.ResolvedLine) string {
	if len(l.Modifiers) == 0 {
		return l.Item.Name
	}
	names := make([]string, 0, len(l.Modifiers))
	for _, m := range l.Modifiers {
		if m.EffectiveQuantity() > 1 {
			names = append(names, fmt.Sprintf("%s x%d", m.Name, m.EffectiveQuantity()))
			continue
		}
		names = append(names, m.Name)
	}
	return fmt.Sprintf("%s (%s)", l.Item.Name, strings.Join(names, ", "))
}
