package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

func schedule(base string) *model.Schedule {
	return &model.Schedule{ID: 1, BaseFare: decimal.RequireFromString(base)}
}

func seat(mult string) model.Seat {
	return model.Seat{Multiplier: decimal.RequireFromString(mult)}
}

func TestFixedPrice(t *testing.T) {
	got := FixedPrice(schedule("1000"), []model.Seat{seat("1.0"), seat("1.5")})
	assert.True(t, got.Equal(decimal.RequireFromString("2500")), "got %s", got)
}

func TestDynamicPrice(t *testing.T) {
	// 20% occupancy -> factor 1.1; 2500 * 1.1 = 2750.00.
	base := DynamicPrice(Inventory{TotalSeats: 45, ReservedSeats: 9})
	got := base(schedule("1000"), []model.Seat{seat("1.0"), seat("1.5")})
	assert.Equal(t, "2750.00", got.StringFixed(2))
}

func TestDynamicPrice_ZeroTotalFallsBackToFixed(t *testing.T) {
	base := DynamicPrice(Inventory{TotalSeats: 0, ReservedSeats: 10})
	got := base(schedule("1000"), []model.Seat{seat("1.0")})
	assert.Equal(t, "1000.00", got.StringFixed(2))
}

func TestDynamicPrice_RoundsOnce(t *testing.T) {
	// 1/3 occupancy gives a repeating factor; the result must carry
	// exactly two decimal places.
	base := DynamicPrice(Inventory{TotalSeats: 3, ReservedSeats: 1})
	got := base(schedule("999.99"), []model.Seat{seat("1.0")})
	assert.Equal(t, got.Round(2).String(), got.String())
}

func TestFeeFor(t *testing.T) {
	f, ok := FeeFor(model.Addon{Name: "EXTRA_LUGGAGE"})
	assert.True(t, ok)
	assert.Equal(t, "150", f.Amount.String())

	f, ok = FeeFor(model.Addon{Name: "MEAL_VEG"})
	assert.True(t, ok)
	assert.Equal(t, "250", f.Amount.String())

	f, ok = FeeFor(model.Addon{Name: "PRIORITY_BOARDING"})
	assert.True(t, ok)
	assert.Equal(t, "100", f.Amount.String())

	_, ok = FeeFor(model.Addon{Name: "BLANKET"})
	assert.False(t, ok)
}

func TestEnginePrice_WithAddons(t *testing.T) {
	eng := NewEngine(FixedPrice)
	addons := []model.Addon{
		{Name: "EXTRA_LUGGAGE"},
		{Name: "MEAL_VEG"},
		{Name: "BLANKET"}, // no fee
	}
	got := eng.Price(schedule("1000"), []model.Seat{seat("1.0")}, addons)
	// 1000 + 150 + 250
	assert.True(t, got.Equal(decimal.RequireFromString("1400")), "got %s", got)
}

func TestApplyFees_OrderIndependent(t *testing.T) {
	fees := []Fee{
		{Name: "a", Amount: decimal.RequireFromString("150")},
		{Name: "b", Amount: decimal.RequireFromString("250")},
	}
	reversed := []Fee{fees[1], fees[0]}
	price := decimal.RequireFromString("1000")
	assert.True(t, ApplyFees(price, fees).Equal(ApplyFees(price, reversed)))
}
