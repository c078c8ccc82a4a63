package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
)

// Coupon is an entry of the static coupon table.
type Coupon struct {
	Code  string
	Type  enums.CouponType
	Value decimal.Decimal
}

var coupons = map[string]Coupon{
	"SAVE10":     {Code: "SAVE10", Type: enums.CouponTypePercent, Value: decimal.NewFromInt(10)},
	"WELCOME500": {Code: "WELCOME500", Type: enums.CouponTypeFixed, Value: decimal.NewFromInt(500)},
}

// LookupCoupon matches code case-insensitively.
func LookupCoupon(code string) (Coupon, bool) {
	c, ok := coupons[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

func (c Coupon) contribution(subtotal decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case enums.CouponTypePercent:
		return subtotal.Mul(c.Value).Div(hundred)
	case enums.CouponTypeFixed:
		return c.Value
	default:
		return decimal.Zero
	}
}
