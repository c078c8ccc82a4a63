package controllers

import (
	"net/http"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/api/validators"
	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	checkoutsvc "github.com/angelmondragon/gaspos-terminal/internal/checkout"
	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
	"github.com/angelmondragon/gaspos-terminal/pkg/types"
)

// Checkout records the session cart as a sale and returns it.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sess, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Checkout(r.Context(), sess, payload.toPayment())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

type checkoutRequest struct {
	Method string         `json:"method" validate:"required"`
	Split  []splitRequest `json:"split,omitempty" validate:"omitempty,dive"`
}

type splitRequest struct {
	Method string `json:"method" validate:"required"`
	Amount string `json:"amount" validate:"required,numeric_amount"`
}

func (c checkoutRequest) toPayment() checkoutsvc.Payment {
	payment := checkoutsvc.Payment{Method: enums.PaymentMethod(validators.SanitizeString(c.Method, 32))}
	for _, leg := range c.Split {
		payment.Split = append(payment.Split, types.SplitPayment{
			Method: enums.PaymentMethod(validators.SanitizeString(leg.Method, 32)),
			Amount: cart.ParseAmount(leg.Amount),
		})
	}
	return payment
}
