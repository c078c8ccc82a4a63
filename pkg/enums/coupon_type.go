package enums

// CouponType is how a coupon value is applied against the cart subtotal.
type CouponType string

const (
	CouponTypePercent CouponType = "percent"
	CouponTypeFixed   CouponType = "fixed"
)

func (c CouponType) String() string {
	return string(c)
}

func (c CouponType) IsValid() bool {
	return c == CouponTypePercent || c == CouponTypeFixed
}
