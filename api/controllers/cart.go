package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/api/validators"
	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
	"github.com/angelmondragon/gaspos-terminal/pkg/types"
)

type cartResponse struct {
	Items          []types.CartLine `json:"items"`
	CouponCode     string           `json:"coupon_code,omitempty"`
	ManualDiscount decimal.Decimal  `json:"manual_discount"`
	Customer       types.Customer   `json:"customer"`
	Totals         cart.Totals      `json:"totals"`
}

func newCartResponse(e *cart.Engine) cartResponse {
	resp := cartResponse{
		Items:          e.Items(),
		ManualDiscount: e.ManualDiscount(),
		Customer:       e.Customer(),
		Totals:         e.ComputeTotals().Rounded(),
	}
	if c, ok := e.Coupon(); ok {
		resp.CouponCode = c.Code
	}
	return resp
}

// mutateCart runs fn against the session cart and answers with the resulting state.
func mutateCart(carts *cart.Registry, logg *logger.Logger, w http.ResponseWriter, r *http.Request, fn func(*cart.Engine) error) {
	sess, err := sessionFromRequest(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	var resp cartResponse
	err = carts.Do(sess.CartKey(), func(e *cart.Engine) error {
		if err := fn(e); err != nil {
			return err
		}
		resp = newCartResponse(e)
		return nil
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, resp)
}

func GetCart(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateCart(carts, logg, w, r, func(*cart.Engine) error { return nil })
	}
}

type addItemRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	VariationID string `json:"variation_id"`
	Name        string `json:"name" validate:"required"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price" validate:"required,numeric_amount"`
	CostPrice   string `json:"cost_price" validate:"numeric_amount"`
}

// AddCartItem adds one unit of a product, merging with an identical line.
func AddCartItem(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line := types.CartLine{
			ProductID:   validators.SanitizeString(payload.ProductID, 64),
			VariationID: validators.SanitizeString(payload.VariationID, 64),
			Name:        validators.SanitizeString(payload.Name, 200),
			Unit:        validators.SanitizeString(payload.Unit, 16),
			UnitPrice:   cart.ParseAmount(payload.UnitPrice),
			CostPrice:   cart.ParseAmount(payload.CostPrice),
		}
		mutateCart(carts, logg, w, r, func(e *cart.Engine) error {
			e.AddItem(line)
			return nil
		})
	}
}

type updateItemRequest struct {
	Quantity  *string `json:"quantity" validate:"omitempty,numeric_amount"`
	UnitPrice *string `json:"unit_price" validate:"omitempty,numeric_amount"`
}

// UpdateCartItem changes the quantity and/or unit price of a line. A quantity
// below 1 removes the line.
func UpdateCartItem(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := lineIndex(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == nil && payload.UnitPrice == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quantity or unit_price is required"))
			return
		}
		mutateCart(carts, logg, w, r, func(e *cart.Engine) error {
			// price first: a quantity below 1 removes the line and shifts indexes
			if payload.UnitPrice != nil {
				if err := e.UpdatePrice(index, cart.ParseAmount(*payload.UnitPrice)); err != nil {
					return err
				}
			}
			if payload.Quantity != nil {
				return e.UpdateQuantity(index, cart.ParseAmount(*payload.Quantity))
			}
			return nil
		})
	}
}

type cashAmountRequest struct {
	Cash string `json:"cash" validate:"required,numeric_amount"`
}

// SetCartItemFromCash sets a weighed line to the quantity the given cash buys.
func SetCartItemFromCash(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := lineIndex(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cashAmountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mutateCart(carts, logg, w, r, func(e *cart.Engine) error {
			_, err := e.SetQuantityFromCash(index, cart.ParseAmount(payload.Cash))
			return err
		})
	}
}

func RemoveCartItem(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := lineIndex(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mutateCart(carts, logg, w, r, func(e *cart.Engine) error {
			return e.RemoveItem(index)
		})
	}
}

type couponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon activates a coupon. An unknown or empty code clears the active
// coupon; the returned cart carries no coupon_code in that case.
func ApplyCoupon(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		code := validators.SanitizeString(payload.Code, 32)
		mutateCart(carts, logg, w, r, func(e *cart.Engine) error {
			if !e.ApplyCoupon(code) && code != "" {
				logg.Info(logg.WithField(r.Context(), "coupon_code", code), "cart.coupon_rejected")
			}
			return nil
		})
	}
}

type discountRequest struct {
	Amount string `json:"amount" validate:"numeric_amount"`
}

func SetManualDiscount(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mutateCart(carts, logg, w, r, func(e *cart.Engine) error {
			e.SetManualDiscount(cart.ParseAmount(payload.Amount))
			return nil
		})
	}
}

type customerRequest struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	ContactNo string `json:"contact_no"`
}

// SetCartCustomer attaches a customer. An empty body object resets to walk-in.
func SetCartCustomer(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer := types.Customer{
			ID:        validators.SanitizeString(payload.ID, 64),
			FullName:  validators.SanitizeString(payload.FullName, 120),
			ContactNo: validators.SanitizeString(payload.ContactNo, 32),
		}
		mutateCart(carts, logg, w, r, func(e *cart.Engine) error {
			e.SetCustomer(customer)
			return nil
		})
	}
}

// ClearCart abandons the current cart.
func ClearCart(carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateCart(carts, logg, w, r, func(e *cart.Engine) error {
			e.Clear()
			return nil
		})
	}
}
