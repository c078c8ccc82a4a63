package controllers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
)

func cartRouter(carts *cart.Registry) http.Handler {
	logg := testLogger()
	return newTestRouter(func(r chi.Router) {
		r.Get("/cart", GetCart(carts, logg))
		r.Delete("/cart", ClearCart(carts, logg))
		r.Post("/cart/items", AddCartItem(carts, logg))
		r.Patch("/cart/items/{index}", UpdateCartItem(carts, logg))
		r.Post("/cart/items/{index}/cash", SetCartItemFromCash(carts, logg))
		r.Delete("/cart/items/{index}", RemoveCartItem(carts, logg))
		r.Put("/cart/coupon", ApplyCoupon(carts, logg))
		r.Put("/cart/discount", SetManualDiscount(carts, logg))
		r.Put("/cart/customer", SetCartCustomer(carts, logg))
	})
}

var lpg = map[string]string{"product_id": "11", "variation_id": "2", "name": "LPG 11kg", "unit": "kg", "unit_price": "1,000.00"}

func TestCartAddMergesAndComputesTotals(t *testing.T) {
	t.Parallel()

	h := cartRouter(cart.NewRegistry())
	doJSON(t, h, http.MethodPost, "/cart/items", lpg)
	resp := doJSON(t, h, http.MethodPost, "/cart/items", lpg)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var got cartResponse
	decodeData(t, resp, &got)
	if len(got.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(got.Items))
	}
	if !got.Items[0].Quantity.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected quantity 2, got %s", got.Items[0].Quantity)
	}
	if !got.Totals.Total.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected total 2000, got %s", got.Totals.Total)
	}
}

func TestCartUpdateAndCashConversion(t *testing.T) {
	t.Parallel()

	h := cartRouter(cart.NewRegistry())
	doJSON(t, h, http.MethodPost, "/cart/items", lpg)

	resp := doJSON(t, h, http.MethodPatch, "/cart/items/0", map[string]string{"quantity": "3", "unit_price": "80"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got cartResponse
	decodeData(t, resp, &got)
	if !got.Totals.Subtotal.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("expected subtotal 240, got %s", got.Totals.Subtotal)
	}

	resp = doJSON(t, h, http.MethodPost, "/cart/items/0/cash", map[string]string{"cash": "250"})
	decodeData(t, resp, &got)
	if !got.Items[0].Quantity.Equal(decimal.RequireFromString("3.12")) {
		t.Fatalf("expected floored quantity 3.12, got %s", got.Items[0].Quantity)
	}

	resp = doJSON(t, h, http.MethodPatch, "/cart/items/0", map[string]string{"quantity": "0.5"})
	decodeData(t, resp, &got)
	if len(got.Items) != 0 {
		t.Fatalf("expected quantity below 1 to remove the line, got %+v", got.Items)
	}
}

func TestCartRejectsBadInput(t *testing.T) {
	t.Parallel()

	h := cartRouter(cart.NewRegistry())

	resp := doJSON(t, h, http.MethodPatch, "/cart/items/0", map[string]string{"quantity": "2"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing line, got %d", resp.Code)
	}
	resp = doJSON(t, h, http.MethodPatch, "/cart/items/abc", map[string]string{"quantity": "2"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad index, got %d", resp.Code)
	}
	resp = doJSON(t, h, http.MethodPost, "/cart/items", map[string]string{"product_id": "1", "name": "x", "unit_price": "abc"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price, got %d", resp.Code)
	}
	if e := decodeError(t, resp); e.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error code %s", e.Code)
	}
	doJSON(t, h, http.MethodPost, "/cart/items", lpg)
	resp = doJSON(t, h, http.MethodPatch, "/cart/items/0", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", resp.Code)
	}
}

func TestCartCouponDiscountCustomerAndClear(t *testing.T) {
	t.Parallel()

	h := cartRouter(cart.NewRegistry())
	doJSON(t, h, http.MethodPost, "/cart/items", lpg)

	var got cartResponse
	decodeData(t, doJSON(t, h, http.MethodPut, "/cart/coupon", map[string]string{"code": "save10"}), &got)
	if got.CouponCode != "SAVE10" {
		t.Fatalf("expected SAVE10 active, got %q", got.CouponCode)
	}
	decodeData(t, doJSON(t, h, http.MethodPut, "/cart/discount", map[string]string{"amount": "50"}), &got)
	if !got.Totals.Discount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected discount 150, got %s", got.Totals.Discount)
	}
	decodeData(t, doJSON(t, h, http.MethodPut, "/cart/coupon", map[string]string{"code": "NOPE"}), &got)
	if got.CouponCode != "" {
		t.Fatalf("expected unknown code to clear coupon, got %q", got.CouponCode)
	}

	decodeData(t, doJSON(t, h, http.MethodPut, "/cart/customer", map[string]string{"id": "c-1", "full_name": "Juan"}), &got)
	if got.Customer.FullName != "Juan" {
		t.Fatalf("unexpected customer %+v", got.Customer)
	}

	decodeData(t, doJSON(t, h, http.MethodDelete, "/cart", nil), &got)
	if len(got.Items) != 0 || got.Customer.ID != "" || !got.ManualDiscount.IsZero() {
		t.Fatalf("expected cleared cart, got %+v", got)
	}
}

func TestCartLockedDuringCheckout(t *testing.T) {
	t.Parallel()

	carts := cart.NewRegistry()
	h := cartRouter(carts)
	doJSON(t, h, http.MethodPost, "/cart/items", lpg)

	lease, err := carts.BeginCheckout(testSession.CartKey())
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}
	defer lease.Abort()

	resp := doJSON(t, h, http.MethodPost, "/cart/items", lpg)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 while checking out, got %d", resp.Code)
	}
}
