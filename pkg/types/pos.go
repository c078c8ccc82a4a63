package types

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
)

// DefaultCustomerName labels sales without a registered customer.
const DefaultCustomerName = "Walk-in"

// Customer is the optional customer reference carried by a cart and its sale.
type Customer struct {
	ID        string `json:"id,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	ContactNo string `json:"contact_no,omitempty"`
}

// DisplayName falls back to the walk-in label.
func (c Customer) DisplayName() string {
	if c.FullName == "" {
		return DefaultCustomerName
	}
	return c.FullName
}

// CartLine is one line of a cart. Quantity may be fractional for weight-based units.
type CartLine struct {
	ProductID   string          `json:"product_id"`
	VariationID string          `json:"variation_id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
}

// CartSnapshot is the serializable state of a cart, used for drafts.
type CartSnapshot struct {
	Items          []CartLine      `json:"items"`
	ManualDiscount decimal.Decimal `json:"manual_discount"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Customer       Customer        `json:"customer"`
}

// SplitPayment is one leg of a split settlement.
type SplitPayment struct {
	Method enums.PaymentMethod `json:"method"`
	Amount decimal.Decimal     `json:"amount"`
}

// SaleLineItem is the frozen copy of a cart line stored with a sale.
type SaleLineItem struct {
	CartLine
	LineTotal decimal.Decimal `json:"line_total"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	TaxType   enums.TaxType   `json:"tax_type,omitempty"`
	TaxName   string          `json:"tax_name,omitempty"`
}
