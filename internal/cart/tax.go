package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
)

// TaxRule is the tax configured for a product. Every variation of the product inherits it.
type TaxRule struct {
	ProductID string
	Rate      decimal.Decimal
	Type      enums.TaxType
	Name      string
}

// TaxTable resolves rules by product id.
type TaxTable map[string]TaxRule

// Lookup returns the rule for productID. Products without a rule are untaxed.
func (t TaxTable) Lookup(productID string) (TaxRule, bool) {
	if t == nil {
		return TaxRule{}, false
	}
	rule, ok := t[productID]
	return rule, ok
}

var hundred = decimal.NewFromInt(100)

// exclusive is added on top of the line total.
func (r TaxRule) exclusive(lineTotal decimal.Decimal) decimal.Decimal {
	if r.Type != enums.TaxTypeExclusive || !r.Rate.IsPositive() {
		return decimal.Zero
	}
	return lineTotal.Mul(r.Rate).Div(hundred)
}

// inclusive is the portion of the line total that is already tax.
func (r TaxRule) inclusive(lineTotal decimal.Decimal) decimal.Decimal {
	if r.Type != enums.TaxTypeInclusive || !r.Rate.IsPositive() {
		return decimal.Zero
	}
	divisor := decimal.NewFromInt(1).Add(r.Rate.Div(hundred))
	return lineTotal.Sub(lineTotal.Div(divisor))
}
