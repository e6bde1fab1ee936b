package pricing

import (
	"sort"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/shopspring/decimal"
)

// scopePriority is the order in which automatic discounts claim a line.
var scopePriority = []model.DiscountScope{
	model.AppliesToProduct,
	model.AppliesToCollection,
	model.AppliesToAll,
}

// Aggregate is the quantity and amount of every line claimed by one
// automatic discount.
type Aggregate struct {
	Discount         model.Discount
	Lines            []int
	TotalQty         int64
	TotalAmountMinor int64
	SavingsMinor     int64
}

// FreeUnit marks units of a line given away by a buy-x-get-y discount.
type FreeUnit struct {
	DiscountID     string
	LineIndex      int
	Quantity       int64
	UnitPriceMinor int64
}

// DiscountResult is the outcome of both discount passes.
type DiscountResult struct {
	GrossSubtotalMinor      int64
	TotalQuantity           int64
	ItemSavingsMinor        int64
	CouponSavingsMinor      int64
	TotalDiscountMinor      int64
	DiscountedSubtotalMinor int64
	Aggregates              []*Aggregate
	FreeUnits               []FreeUnit
	// Applied is display metadata only: the coupon when one applied,
	// otherwise the first automatic discount with savings.
	Applied       *model.Discount
	CouponApplied bool
}

// ApplyDiscounts runs the aggregation pass then the application pass
// (buy-x-get-y, percentage/fixed, coupon) over the resolved lines.
func ApplyDiscounts(lines []model.ResolvedLine, automatic []model.Discount, coupon *model.Discount, now time.Time) DiscountResult {
	var res DiscountResult
	for _, l := range lines {
		res.GrossSubtotalMinor += l.AmountMinor()
		res.TotalQuantity += int64(l.Quantity)
	}

	res.Aggregates = aggregate(lines, activeAutomatic(automatic, now))

	for _, agg := range res.Aggregates {
		if agg.Discount.Type != model.DiscountBuyXGetY {
			continue
		}
		free := cheapestFree(lines, agg)
		for _, f := range free {
			agg.SavingsMinor += f.Quantity * f.UnitPriceMinor
		}
		agg.SavingsMinor = maxInt64(agg.SavingsMinor, 0)
		res.FreeUnits = append(res.FreeUnits, free...)
		res.ItemSavingsMinor += agg.SavingsMinor
	}

	for _, agg := range res.Aggregates {
		d := agg.Discount
		if d.Type != model.DiscountPercentage && d.Type != model.DiscountFixedAmount {
			continue
		}
		if !minRequirementMet(d, agg.TotalAmountMinor, agg.TotalQty) {
			continue
		}
		for _, i := range agg.Lines {
			agg.SavingsMinor += lineSavings(d, lines[i])
		}
		agg.SavingsMinor = maxInt64(agg.SavingsMinor, 0)
		res.ItemSavingsMinor += agg.SavingsMinor
	}

	if coupon != nil && coupon.IsCoupon() && coupon.IsActiveAt(now) {
		base := maxInt64(res.GrossSubtotalMinor-res.ItemSavingsMinor, 0)
		if minRequirementMet(*coupon, base, res.TotalQuantity) {
			res.CouponApplied = true
			res.CouponSavingsMinor = couponSavings(*coupon, base)
		}
	}

	res.TotalDiscountMinor = minInt64(res.ItemSavingsMinor+res.CouponSavingsMinor, maxInt64(res.GrossSubtotalMinor, 0))
	res.DiscountedSubtotalMinor = res.GrossSubtotalMinor - res.TotalDiscountMinor

	if res.CouponApplied {
		c := *coupon
		res.Applied = &c
	} else {
		for _, agg := range res.Aggregates {
			if agg.SavingsMinor > 0 {
				d := agg.Discount
				res.Applied = &d
				break
			}
		}
	}
	return res
}

func activeAutomatic(discounts []model.Discount, now time.Time) []model.Discount {
	out := make([]model.Discount, 0, len(discounts))
	for _, d := range discounts {
		if d.IsCoupon() || !d.IsActiveAt(now) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// aggregate assigns each line to at most one discount and returns the
// aggregates in discount-list order.
func aggregate(lines []model.ResolvedLine, active []model.Discount) []*Aggregate {
	byIndex := make(map[int]*Aggregate)
	for i, l := range lines {
		idx := matchDiscount(l.Item, active)
		if idx < 0 {
			continue
		}
		agg, ok := byIndex[idx]
		if !ok {
			agg = &Aggregate{Discount: active[idx]}
			byIndex[idx] = agg
		}
		agg.Lines = append(agg.Lines, i)
		agg.TotalQty += int64(l.Quantity)
		agg.TotalAmountMinor += l.AmountMinor()
	}

	out := make([]*Aggregate, 0, len(byIndex))
	for i := range active {
		if agg, ok := byIndex[i]; ok {
			out = append(out, agg)
		}
	}
	return out
}

func matchDiscount(item model.InventoryItem, active []model.Discount) int {
	for _, scope := range scopePriority {
		for i, d := range active {
			if normalizedScope(d.AppliesTo) != scope {
				continue
			}
			switch scope {
			case model.AppliesToProduct:
				if d.Targets(item.ID) {
					return i
				}
			case model.AppliesToCollection:
				if d.Targets(item.Collections...) {
					return i
				}
			default:
				return i
			}
		}
	}
	return -1
}

func normalizedScope(s model.DiscountScope) model.DiscountScope {
	if s == "" {
		return model.AppliesToAll
	}
	return s
}

// cheapestFree marks floor(qty/(buy+get))×get of the aggregate's cheapest
// units as free.
func cheapestFree(lines []model.ResolvedLine, agg *Aggregate) []FreeUnit {
	d := agg.Discount
	if d.BuyQuantity < 1 || d.GetQuantity < 1 {
		return nil
	}
	if d.MinRequirement == model.MinRequirementQuantity && agg.TotalQty < d.MinRequirementValue {
		return nil
	}

	group := int64(d.BuyQuantity + d.GetQuantity)
	remaining := (agg.TotalQty / group) * int64(d.GetQuantity)
	if remaining == 0 {
		return nil
	}

	order := append([]int(nil), agg.Lines...)
	sort.SliceStable(order, func(a, b int) bool {
		return lines[order[a]].UnitPriceMinor < lines[order[b]].UnitPriceMinor
	})

	var free []FreeUnit
	for _, i := range order {
		if remaining == 0 {
			break
		}
		n := minInt64(remaining, int64(lines[i].Quantity))
		free = append(free, FreeUnit{
			DiscountID:     d.ID,
			LineIndex:      i,
			Quantity:       n,
			UnitPriceMinor: lines[i].UnitPriceMinor,
		})
		remaining -= n
	}
	return free
}

func minRequirementMet(d model.Discount, amountMinor, qty int64) bool {
	switch d.MinRequirement {
	case model.MinRequirementAmount:
		return amountMinor >= d.MinRequirementValue
	case model.MinRequirementQuantity:
		return qty >= d.MinRequirementValue
	default:
		return true
	}
}

func lineSavings(d model.Discount, l model.ResolvedLine) int64 {
	value := decimal.Max(d.Value, decimal.Zero)
	switch d.Type {
	case model.DiscountPercentage:
		return ApplyPercent(maxInt64(l.AmountMinor(), 0), decimal.Min(value, hundred))
	case model.DiscountFixedAmount:
		return RoundMinor(value.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return 0
}

func couponSavings(c model.Discount, baseMinor int64) int64 {
	value := decimal.Max(c.Value, decimal.Zero)
	switch c.Type {
	case model.DiscountPercentage:
		return ApplyPercent(baseMinor, decimal.Min(value, hundred))
	case model.DiscountFixedAmount:
		return RoundMinor(value)
	}
	return 0
}
