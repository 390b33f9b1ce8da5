// Package coupon decides discounts for checkout codes.
package coupon

import "strings"

// Decision is computed per request and never stored.
type Decision struct {
	Valid         bool   `json:"valid"`
	Code          string `json:"code"`
	Free          bool   `json:"free"`
	DiscountMinor int64  `json:"discountMinor"`
	Message       string `json:"message"`
}

// flashSale codes take the full amount off.
var flashSale = map[string]struct{}{
	"flash100":     {},
	"flashsale100": {},
}

// Evaluate maps a raw code and an amount in minor units to a discount.
// Codes are compared trimmed and case-insensitively. An empty code is not an error.
func Evaluate(code string, amountMinor int64) Decision {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return Decision{}
	}

	if _, ok := flashSale[normalized]; !ok {
		return Decision{Code: normalized, Message: "Invalid coupon code"}
	}

	if amountMinor < 0 {
		amountMinor = 0
	}
	return Decision{
		Valid:         true,
		Code:          normalized,
		Free:          true,
		DiscountMinor: amountMinor,
		Message:       "Coupon applied: 100% off",
	}
}
