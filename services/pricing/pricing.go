package pricing

import "math"

// Discount slider bounds shared by bundles and packages.
const (
	MinDiscount  = 0
	MaxDiscount  = 50
	DiscountStep = 5
)

// RoundCents rounds an amount to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClampDiscount bounds a slider value to [0,50] and snaps it to the nearest step of 5.
func ClampDiscount(d int) int {
	if d < MinDiscount {
		return MinDiscount
	}
	if d > MaxDiscount {
		return MaxDiscount
	}
	return int(math.Round(float64(d)/DiscountStep)) * DiscountStep
}

func applyDiscount(total float64, discount int) float64 {
	return RoundCents(total * (1 - float64(discount)/100))
}
