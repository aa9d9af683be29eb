package checkout

import "github.com/shopspring/decimal"

const (
	// Orders under the threshold pay the flat shipping rate.
	FreeShippingThreshold = 499
	ShippingFlatRate      = 99
)

// Shipping returns the flat-rate cost for a subtotal.
func Shipping(subtotal float64) float64 {
	if subtotal < FreeShippingThreshold {
		return ShippingFlatRate
	}
	return 0
}

// DiscountAmount is subtotal * pct / 100 at full precision.
func DiscountAmount(subtotal float64, discountPercent int) float64 {
	return discountAmount(decimal.NewFromFloat(subtotal), discountPercent).InexactFloat64()
}

// Total computes subtotal + shipping - discount, rounding exactly once at the
// end. Intermediates keep full precision; rounding is half away from zero,
// which for the non-negative amounts here matches conventional rounding.
func Total(subtotal float64, discountPercent int) float64 {
	sub := decimal.NewFromFloat(subtotal)
	total := sub.
		Add(decimal.NewFromFloat(Shipping(subtotal))).
		Sub(discountAmount(sub, discountPercent))
	return total.Round(0).InexactFloat64()
}

func discountAmount(subtotal decimal.Decimal, discountPercent int) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(int64(discountPercent))).Div(decimal.NewFromInt(100))
}
