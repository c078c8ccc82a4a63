package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/types"
)

// Totals is the result of ComputeTotals. Values are exact; use Rounded for display
// and persistence.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	ExclusiveTax decimal.Decimal `json:"exclusive_tax"`
	InclusiveTax decimal.Decimal `json:"inclusive_tax"`
	Total        decimal.Decimal `json:"total"`
}

// Rounded returns the totals at two decimal places. Total is rebuilt from the
// rounded parts so a stored sale always satisfies
// total = subtotal - discount + exclusive tax.
func (t Totals) Rounded() Totals {
	r := Totals{
		Subtotal:     Money(t.Subtotal),
		Discount:     Money(t.Discount),
		ExclusiveTax: Money(t.ExclusiveTax),
		InclusiveTax: Money(t.InclusiveTax),
	}
	r.Total = r.Subtotal.Sub(r.Discount).Add(r.ExclusiveTax)
	return r
}

// Engine holds one cart and computes its totals. It is not safe for concurrent
// use; Registry serializes access per session.
type Engine struct {
	items          []types.CartLine
	manualDiscount decimal.Decimal
	coupon         *Coupon
	customer       types.Customer
	taxes          TaxTable
}

// NewEngine returns an empty cart that resolves taxes from taxes.
func NewEngine(taxes TaxTable) *Engine {
	return &Engine{taxes: taxes}
}

// SetTaxRules swaps the tax lookup table.
func (e *Engine) SetTaxRules(taxes TaxTable) {
	e.taxes = taxes
}

// Items returns a copy of the current lines.
func (e *Engine) Items() []types.CartLine {
	out := make([]types.CartLine, len(e.items))
	copy(out, e.items)
	return out
}

func (e *Engine) Len() int {
	return len(e.items)
}

func (e *Engine) IsEmpty() bool {
	return len(e.items) == 0
}

// AddItem increments the quantity of an existing line with the same product,
// variation and name, or appends the item with quantity 1.
func (e *Engine) AddItem(item types.CartLine) {
	for i := range e.items {
		if sameLine(e.items[i], item) {
			e.items[i].Quantity = e.items[i].Quantity.Add(decimal.NewFromInt(1))
			return
		}
	}
	item.Quantity = decimal.NewFromInt(1)
	item.UnitPrice = nonNegative(item.UnitPrice)
	item.CostPrice = nonNegative(item.CostPrice)
	e.items = append(e.items, item)
}

// UpdateQuantity sets the quantity of a line. Quantities below 1 remove it.
func (e *Engine) UpdateQuantity(index int, qty decimal.Decimal) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	if qty.LessThan(decimal.NewFromInt(1)) {
		e.removeAt(index)
		return nil
	}
	e.items[index].Quantity = qty
	return nil
}

// UpdatePrice overrides the unit price of a line.
func (e *Engine) UpdatePrice(index int, price decimal.Decimal) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	e.items[index].UnitPrice = nonNegative(price)
	return nil
}

func (e *Engine) RemoveItem(index int) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	e.removeAt(index)
	return nil
}

// ApplyCoupon activates code when it exists. An unknown code clears the active coupon.
func (e *Engine) ApplyCoupon(code string) bool {
	c, ok := LookupCoupon(code)
	if !ok {
		e.coupon = nil
		return false
	}
	e.coupon = &c
	return true
}

// Coupon returns the active coupon, if any.
func (e *Engine) Coupon() (Coupon, bool) {
	if e.coupon == nil {
		return Coupon{}, false
	}
	return *e.coupon, true
}

func (e *Engine) SetManualDiscount(amount decimal.Decimal) {
	e.manualDiscount = nonNegative(amount)
}

func (e *Engine) ManualDiscount() decimal.Decimal {
	return e.manualDiscount
}

func (e *Engine) SetCustomer(c types.Customer) {
	e.customer = c
}

func (e *Engine) Customer() types.Customer {
	return e.customer
}

// ComputeTotals derives subtotal, discount and taxes from the current lines.
// Inclusive tax is reported but never added to the total. The total is not
// clamped, so a large discount can drive it negative.
func (e *Engine) ComputeTotals() Totals {
	var t Totals
	for _, item := range e.items {
		lineTotal := item.Quantity.Mul(item.UnitPrice)
		t.Subtotal = t.Subtotal.Add(lineTotal)
		if rule, ok := e.taxes.Lookup(item.ProductID); ok {
			t.ExclusiveTax = t.ExclusiveTax.Add(rule.exclusive(lineTotal))
			t.InclusiveTax = t.InclusiveTax.Add(rule.inclusive(lineTotal))
		}
	}
	t.Discount = e.manualDiscount
	if e.coupon != nil {
		t.Discount = t.Discount.Add(e.coupon.contribution(t.Subtotal))
	}
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.ExclusiveTax)
	return t
}

// SaleLines freezes the cart lines with their tax resolution for a sale record.
func (e *Engine) SaleLines() []types.SaleLineItem {
	out := make([]types.SaleLineItem, 0, len(e.items))
	for _, item := range e.items {
		line := types.SaleLineItem{
			CartLine:  item,
			LineTotal: Money(item.Quantity.Mul(item.UnitPrice)),
		}
		if rule, ok := e.taxes.Lookup(item.ProductID); ok {
			line.TaxRate = rule.Rate
			line.TaxType = rule.Type
			line.TaxName = rule.Name
		}
		out = append(out, line)
	}
	return out
}

// QuantityForCash converts a cash amount into the quantity it buys at the line's
// unit price, floored to two places. A free line yields 0.
func (e *Engine) QuantityForCash(index int, cash decimal.Decimal) (decimal.Decimal, error) {
	if err := e.checkIndex(index); err != nil {
		return decimal.Zero, err
	}
	price := e.items[index].UnitPrice
	if !price.IsPositive() || !cash.IsPositive() {
		return decimal.Zero, nil
	}
	return cash.Div(price).RoundFloor(2), nil
}

// SetQuantityFromCash applies QuantityForCash through UpdateQuantity.
func (e *Engine) SetQuantityFromCash(index int, cash decimal.Decimal) (decimal.Decimal, error) {
	qty, err := e.QuantityForCash(index, cash)
	if err != nil {
		return decimal.Zero, err
	}
	return qty, e.UpdateQuantity(index, qty)
}

// Snapshot captures the cart for a draft.
func (e *Engine) Snapshot() types.CartSnapshot {
	snap := types.CartSnapshot{
		Items:          e.Items(),
		ManualDiscount: e.manualDiscount,
		Customer:       e.customer,
	}
	if e.coupon != nil {
		snap.CouponCode = e.coupon.Code
	}
	return snap
}

// Restore replaces the cart with snap. Unknown coupon codes are dropped.
func (e *Engine) Restore(snap types.CartSnapshot) {
	e.items = make([]types.CartLine, 0, len(snap.Items))
	for _, item := range snap.Items {
		item.UnitPrice = nonNegative(item.UnitPrice)
		e.items = append(e.items, item)
	}
	e.manualDiscount = nonNegative(snap.ManualDiscount)
	e.customer = snap.Customer
	e.coupon = nil
	if snap.CouponCode != "" {
		e.ApplyCoupon(snap.CouponCode)
	}
}

// Clear empties the cart after a completed checkout.
func (e *Engine) Clear() {
	e.items = nil
	e.manualDiscount = decimal.Zero
	e.coupon = nil
	e.customer = types.Customer{}
}

func (e *Engine) checkIndex(index int) error {
	if index < 0 || index >= len(e.items) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no cart line at index %d", index))
	}
	return nil
}

func (e *Engine) removeAt(index int) {
	e.items = append(e.items[:index], e.items[index+1:]...)
}

func sameLine(a, b types.CartLine) bool {
	return a.ProductID == b.ProductID && a.VariationID == b.VariationID && a.Name == b.Name
}
