package coupon

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DiscountType selects how DiscountValue is interpreted.
type DiscountType string

const (
	TypePercentage  DiscountType = "percentage"
	TypeFixedAmount DiscountType = "fixed_amount"
)

// ErrNotApplicable is returned when no candidate store has a coupon with
// the given code. It deliberately does not distinguish "code does not
// exist" from "code belongs to a different store".
var ErrNotApplicable = errors.New("coupon code is invalid or not applicable")

// Coupon is a store-scoped discount. Code uniqueness is (StoreID, Code):
// the same code may exist for different stores.
type Coupon struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	StoreID       string          `json:"store_id"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MinSpend      decimal.Decimal `json:"min_spend"`
}

// Discount returns the amount to subtract from a sub-order subtotal. It is
// zero when the subtotal is under the coupon's minimum spend, and never
// exceeds the subtotal itself.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(c.MinSpend) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case TypePercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
	case TypeFixedAmount:
		discount = c.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}
