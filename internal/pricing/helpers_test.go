package pricing

import (
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func line(id string, priceMinor int64, qty int, taxable bool, collections ...string) model.ResolvedLine {
	return model.ResolvedLine{
		Item: model.InventoryItem{
			ID:          id,
			SKU:         "SKU-" + id,
			Name:        "Item " + id,
			PriceMinor:  priceMinor,
			Taxable:     taxable,
			Collections: collections,
		},
		Quantity:       qty,
		UnitPriceMinor: priceMinor,
	}
}

func pct(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func ptr[T any](v T) *T {
	return &v
}

func activeDiscount(id string, typ model.DiscountType, scope model.DiscountScope, value float64, ids ...string) model.Discount {
	return model.Discount{
		ID:             id,
		Type:           typ,
		AppliesTo:      scope,
		AppliesToIDs:   ids,
		MinRequirement: model.MinRequirementNone,
		Value:          decimal.NewFromFloat(value),
		StartDate:      testNow.Add(-24 * time.Hour),
		Status:         model.DiscountActive,
	}
}
