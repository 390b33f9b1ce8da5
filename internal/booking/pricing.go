package booking

import (
	"math"

	"github.com/chachabrian/hilot-backend/internal/coupon"
)

// Quote is the price breakdown of a checkout, in minor units.
type Quote struct {
	BaseMinor     int64
	FeeMinor      int64
	TotalMinor    int64
	DiscountMinor int64
	ChargeMinor   int64
	Coupon        coupon.Decision
}

func toMinor(major float64) int64 {
	return int64(math.Round(major * 100))
}

func toMajor(minor int64) float64 {
	return float64(minor) / 100
}

// PriceQuote adds the platform fee to the base price and applies the coupon
// to the total.
func PriceQuote(basePrice, platformFee float64, couponCode string) Quote {
	q := Quote{
		BaseMinor: toMinor(basePrice),
		FeeMinor:  toMinor(platformFee),
	}
	q.TotalMinor = q.BaseMinor + q.FeeMinor
	if q.TotalMinor < 0 {
		q.TotalMinor = 0
	}

	q.Coupon = coupon.Evaluate(couponCode, q.TotalMinor)
	if q.Coupon.Valid {
		q.DiscountMinor = q.Coupon.DiscountMinor
	}
	if q.DiscountMinor > q.TotalMinor {
		q.DiscountMinor = q.TotalMinor
	}
	q.ChargeMinor = q.TotalMinor - q.DiscountMinor
	return q
}
