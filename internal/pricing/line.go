package pricing

import "github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

// Bounds on client-supplied cart input. Within them every line amount and the
// order subtotal fit comfortably in int64 minor units.
const (
	MaxOrderLines       = 500
	MaxLineQuantity     = 10_000
	MaxModifierQuantity = 100
	MaxUnitPriceMinor   = int64(100_000_000_000)

	runningLimit = MaxUnitPriceMinor * MaxModifierQuantity
)

// ValidQuantity reports whether qty is a usable line quantity.
func ValidQuantity(qty int) bool {
	return qty >= 1 && qty <= MaxLineQuantity
}

// UnitPrice adds each modifier's adjustment times its quantity to the catalog
// price. ok is false when the catalog price or the resulting unit price falls
// outside [0, MaxUnitPriceMinor], or a modifier is out of range.
func UnitPrice(priceMinor int64, modifiers []model.Modifier) (unit int64, ok bool) {
	if priceMinor < 0 || priceMinor > MaxUnitPriceMinor {
		return 0, false
	}
	unit = priceMinor
	for _, m := range modifiers {
		if m.Quantity > MaxModifierQuantity {
			return 0, false
		}
		adj := m.PriceAdjustmentMinor
		if adj > MaxUnitPriceMinor || adj < -MaxUnitPriceMinor {
			return 0, false
		}
		unit += adj * int64(m.EffectiveQuantity())
		// each step moves unit by at most MaxUnitPriceMinor×MaxModifierQuantity
		if unit > runningLimit || unit < -runningLimit {
			return 0, false
		}
	}
	if unit < 0 || unit > MaxUnitPriceMinor {
		return 0, false
	}
	return unit, true
}
