package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestCoupon_Discount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal float64
		expected string
	}{
		{
			name:     "ten percent",
			coupon:   Coupon{DiscountType: TypePercentage, DiscountValue: dec(10)},
			subtotal: 200,
			expected: "20",
		},
		{
			name:     "fixed amount",
			coupon:   Coupon{DiscountType: TypeFixedAmount, DiscountValue: dec(25)},
			subtotal: 100,
			expected: "25",
		},
		{
			name:     "fixed amount capped at subtotal",
			coupon:   Coupon{DiscountType: TypeFixedAmount, DiscountValue: dec(150)},
			subtotal: 100,
			expected: "100",
		},
		{
			name:     "hundred percent",
			coupon:   Coupon{DiscountType: TypePercentage, DiscountValue: dec(100)},
			subtotal: 80,
			expected: "80",
		},
		{
			name:     "below min spend",
			coupon:   Coupon{DiscountType: TypePercentage, DiscountValue: dec(10), MinSpend: dec(50)},
			subtotal: 49.99,
			expected: "0",
		},
		{
			name:     "exactly min spend",
			coupon:   Coupon{DiscountType: TypePercentage, DiscountValue: dec(10), MinSpend: dec(50)},
			subtotal: 50,
			expected: "5",
		},
		{
			name:     "unknown type gives nothing",
			coupon:   Coupon{DiscountType: "mystery", DiscountValue: dec(10)},
			subtotal: 100,
			expected: "0",
		},
		{
			name:     "zero subtotal",
			coupon:   Coupon{DiscountType: TypePercentage, DiscountValue: dec(10)},
			subtotal: 0,
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.coupon.Discount(dec(tt.subtotal))
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestCoupon_Discount_NeverExceedsSubtotal(t *testing.T) {
	coupons := []Coupon{
		{DiscountType: TypePercentage, DiscountValue: dec(250)},
		{DiscountType: TypeFixedAmount, DiscountValue: dec(10000)},
	}
	for _, c := range coupons {
		for _, sub := range []float64{0, 0.5, 13.37, 99.99, 1000} {
			d := c.Discount(dec(sub))
			assert.True(t, d.LessThanOrEqual(dec(sub)), "discount %s > subtotal %v", d, sub)
			assert.False(t, d.IsNegative())
		}
	}
}
