package pricing

import (
	"testing"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onePercentFee() model.FeeInputs {
	return model.FeeInputs{
		BasePlatformFeePct: ptr(pct(0.5)),
		ProcessingFeePct:   pct(0.5),
	}
}

func TestPrice_PlainOrderWithFee(t *testing.T) {
	q, err := Price(Input{
		Lines: []model.ResolvedLine{line("A", 1000, 2, true)},
		Fee:   onePercentFee(),
		Now:   testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), q.Totals.DiscountedSubtotalMinor)
	assert.Equal(t, int64(0), q.Totals.TaxMinor)
	assert.Equal(t, int64(20), q.Totals.FeeMinor)
	assert.Equal(t, int64(2020), q.Totals.TotalMinor)
	assert.Equal(t, "1", q.FeePct.String())

	require.Len(t, q.Lines, 2)
	assert.Equal(t, model.LineKindItem, q.Lines[0].Kind)
	assert.Equal(t, int64(2000), q.Lines[0].PriceMinor)
	assert.Equal(t, model.LineKindFee, q.Lines[1].Kind)
	assert.Equal(t, LabelFee, q.Lines[1].Label)
	assert.Equal(t, int64(20), q.Lines[1].PriceMinor)
}

func TestPrice_DiscountTaxAndFee(t *testing.T) {
	d := activeDiscount("D10", model.DiscountPercentage, model.AppliesToCollection, 10, "drinks")
	taxCfg := model.TaxConfig{Jurisdictions: []model.TaxJurisdiction{{Code: "J8", Rate: pct(0.08)}}}

	q, err := Price(Input{
		Lines:     []model.ResolvedLine{line("A", 1000, 2, true, "drinks")},
		Automatic: []model.Discount{d},
		Tax:       TaxRequest{JurisdictionCode: "J8"},
		TaxConfig: taxCfg,
		Fee:       onePercentFee(),
		Now:       testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1800), q.Totals.DiscountedSubtotalMinor)
	assert.Equal(t, int64(1800), q.Totals.TaxableBaseMinor)
	assert.Equal(t, int64(144), q.Totals.TaxMinor)
	assert.Equal(t, int64(1944), q.Totals.FeeBaseMinor)
	assert.Equal(t, int64(19), q.Totals.FeeMinor)
	assert.Equal(t, int64(1963), q.Totals.TotalMinor)

	kinds := make([]string, 0, len(q.Lines))
	var sum int64
	for _, l := range q.Lines {
		kinds = append(kinds, l.Kind)
		sum += l.PriceMinor
	}
	assert.Equal(t, []string{model.LineKindItem, model.LineKindDiscount, model.LineKindTax, model.LineKindFee}, kinds)
	assert.Equal(t, q.Totals.TotalMinor, sum)
}

func TestPrice_BuyXGetY(t *testing.T) {
	d := activeDiscount("B2G1", model.DiscountBuyXGetY, model.AppliesToAll, 0)
	d.BuyQuantity = 2
	d.GetQuantity = 1

	q, err := Price(Input{
		Lines:     []model.ResolvedLine{line("A", 500, 3, false)},
		Automatic: []model.Discount{d},
		Fee:       model.FeeInputs{BasePlatformFeePct: ptr(pct(0))},
		Now:       testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500), q.Totals.DiscountMinor)
	assert.Equal(t, int64(1000), q.Totals.DiscountedSubtotalMinor)
	assert.Equal(t, int64(1000), q.Totals.TotalMinor)
}

func TestPrice_SplitsFee(t *testing.T) {
	fee := onePercentFee()
	fee.SplitConfig = &model.FeeSplitConfig{PlatformBps: 60, PartnerBps: 40}

	q, err := Price(Input{
		Lines: []model.ResolvedLine{line("A", 1000, 2, true)},
		Fee:   fee,
		Now:   testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20), q.FeeSplit.Total())
	assert.Equal(t, int64(12), q.FeeSplit.PlatformMinor)
	assert.Equal(t, int64(8), q.FeeSplit.PartnerMinor)
}

func TestPrice_InvalidSplit(t *testing.T) {
	fee := onePercentFee()
	fee.SplitConfig = &model.FeeSplitConfig{PlatformBps: 9000, PartnerBps: 9000}

	_, err := Price(Input{
		Lines: []model.ResolvedLine{line("A", 1000, 1, true)},
		Fee:   fee,
		Now:   testNow,
	})

	assert.ErrorIs(t, err, model.ErrSplitConfigInvalid)
}

func TestAssemble_ModifierLabels(t *testing.T) {
	l := line("LATTE", 550, 1, true)
	l.Item.Name = "Latte"
	l.Item.Images = []string{"https://cdn.example.com/latte.png"}
	l.Modifiers = []model.Modifier{
		{Name: "Oat milk", PriceAdjustmentMinor: 75},
		{Name: "Extra shot", PriceAdjustmentMinor: 100, Quantity: 2},
	}

	out := Assemble([]model.ResolvedLine{l}, model.Totals{})

	require.Len(t, out, 1)
	assert.Equal(t, "Latte (Oat milk, Extra shot x2)", out[0].Label)
	assert.Equal(t, "https://cdn.example.com/latte.png", out[0].Thumb)
	assert.Len(t, out[0].Modifiers, 2)
}
