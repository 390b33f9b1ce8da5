package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		amount int64
		want   Decision
	}{
		{
			name:   "empty code is a silent no-op",
			code:   "",
			amount: 147400,
			want:   Decision{},
		},
		{
			name:   "whitespace only counts as empty",
			code:   "   ",
			amount: 147400,
			want:   Decision{},
		},
		{
			name:   "flash sale code covers the full amount",
			code:   "  FLASH100 ",
			amount: 147400,
			want: Decision{
				Valid:         true,
				Code:          "flash100",
				Free:          true,
				DiscountMinor: 147400,
				Message:       "Coupon applied: 100% off",
			},
		},
		{
			name:   "second code of the family",
			code:   "FlashSale100",
			amount: 500,
			want: Decision{
				Valid:         true,
				Code:          "flashsale100",
				Free:          true,
				DiscountMinor: 500,
				Message:       "Coupon applied: 100% off",
			},
		},
		{
			name:   "unknown code",
			code:   "HALFOFF",
			amount: 147400,
			want:   Decision{Code: "halfoff", Message: "Invalid coupon code"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.code, tt.amount))
		})
	}
}

func TestEvaluateIsDeterministicAndBounded(t *testing.T) {
	for _, amount := range []int64{0, 1, 7500, 147400, 99999999} {
		first := Evaluate("flash100", amount)
		second := Evaluate("flash100", amount)

		assert.Equal(t, first, second)
		assert.LessOrEqual(t, first.DiscountMinor, amount)
		assert.GreaterOrEqual(t, first.DiscountMinor, int64(0))
	}

	assert.Equal(t, int64(0), Evaluate("flash100", -10).DiscountMinor)
}
