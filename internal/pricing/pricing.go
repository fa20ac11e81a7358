// Package pricing computes booking prices.  All arithmetic uses
// decimal values end to end; the only rounding happens once, after the
// demand factor is applied.  The base price computation is pluggable
// (fixed vs. demand-adjusted) and add-on fees are an ordered additive
// chain applied after the base computation, so new fee kinds can be
// added without touching existing ones.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// Flat add-on fees.  These mirror the catalogue add-on kinds; the fee
// is charged once per booking regardless of seat count.
var (
	luggageFee  = decimal.NewFromFloat(150.00)
	mealFee     = decimal.NewFromFloat(250.00)
	priorityFee = decimal.NewFromFloat(100.00)
)

// BasePriceFunc computes the pre-add-on price of a reservation from
// the schedule's base fare and the selected seats.
type BasePriceFunc func(schedule *model.Schedule, seats []model.Seat) decimal.Decimal

// FixedPrice sums baseFare × multiplier over the selected seats with
// no demand adjustment.
func FixedPrice(schedule *model.Schedule, seats []model.Seat) decimal.Decimal {
	total := decimal.Zero
	for _, s := range seats {
		total = total.Add(schedule.BaseFare.Mul(s.Multiplier))
	}
	return total
}

// Inventory feeds the demand factor.  The values are supplied at
// construction time; production deployments should source them from
// live occupancy rather than constants.
type Inventory struct {
	TotalSeats    int
	ReservedSeats int
}

// DynamicPrice returns a BasePriceFunc that scales the fixed price by
// a demand factor of 1.0 + 0.5 × (reserved / total).  The occupancy
// ratio lives in [0,1], so the factor is clamped to [1.0, 1.5] by
// construction.  The result is rounded half-up to two decimal places;
// this is the single rounding point of the whole composition since the
// add-on fees applied afterwards are exact.
func DynamicPrice(inv Inventory) BasePriceFunc {
	factor := decimal.NewFromInt(1)
	if inv.TotalSeats > 0 {
		occupancy := decimal.NewFromInt(int64(inv.ReservedSeats)).Div(decimal.NewFromInt(int64(inv.TotalSeats)))
		factor = factor.Add(decimal.NewFromFloat(0.5).Mul(occupancy))
	}
	return func(schedule *model.Schedule, seats []model.Seat) decimal.Decimal {
		return FixedPrice(schedule, seats).Mul(factor).Round(2)
	}
}

// Fee is one additive price component applied after the base
// computation.
type Fee struct {
	Name   string
	Amount decimal.Decimal
}

// FeeFor maps an add-on to its flat fee by name fragment.  Unknown
// add-ons carry no fee; the second return reports whether a fee
// applies.
func FeeFor(addon model.Addon) (Fee, bool) {
	switch {
	case strings.Contains(addon.Name, "LUGGAGE"):
		return Fee{Name: addon.Name, Amount: luggageFee}, true
	case strings.Contains(addon.Name, "MEAL"):
		return Fee{Name: addon.Name, Amount: mealFee}, true
	case strings.Contains(addon.Name, "PRIORITY"):
		return Fee{Name: addon.Name, Amount: priorityFee}, true
	}
	return Fee{}, false
}

// ApplyFees folds an ordered fee chain over a computed price.  Each
// step is additive, so the order does not change the total.
func ApplyFees(price decimal.Decimal, fees []Fee) decimal.Decimal {
	for _, f := range fees {
		price = price.Add(f.Amount)
	}
	return price
}

// Engine ties a base price strategy to the add-on fee chain.
type Engine struct {
	base BasePriceFunc
}

// NewEngine constructs an Engine around the given base price strategy.
func NewEngine(base BasePriceFunc) *Engine {
	return &Engine{base: base}
}

// Price computes the final booking price: base strategy over the
// seats, then the flat fee of every recognised add-on.
func (e *Engine) Price(schedule *model.Schedule, seats []model.Seat, addons []model.Addon) decimal.Decimal {
	fees := make([]Fee, 0, len(addons))
	for _, a := range addons {
		if f, ok := FeeFor(a); ok {
			fees = append(fees, f)
		}
	}
	return ApplyFees(e.base(schedule, seats), fees)
}
