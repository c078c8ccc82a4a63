package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	"github.com/angelmondragon/gaspos-terminal/internal/sales"
	"github.com/angelmondragon/gaspos-terminal/internal/session"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
	"github.com/angelmondragon/gaspos-terminal/pkg/types"
)

const splitLegs = 2

// Payment is how the customer settles the cart.
type Payment struct {
	Method enums.PaymentMethod
	Split  []types.SplitPayment
}

// SyncTrigger asks the sync loop to drain the queue soon.
type SyncTrigger interface {
	Trigger(reason string)
}

// Service turns the session cart into a recorded sale.
type Service interface {
	Checkout(ctx context.Context, sess session.Session, payment Payment) (*models.Sale, error)
}

type service struct {
	carts   *cart.Registry
	queue   sales.Queue
	trigger SyncTrigger
	logg    *logger.Logger
}

// NewService wires checkout. trigger may be nil when no sync loop runs.
func NewService(carts *cart.Registry, queue sales.Queue, trigger SyncTrigger, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart registry required")
	}
	if queue == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sale queue required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{carts: carts, queue: queue, trigger: trigger, logg: logg}, nil
}

// Checkout records the cart as a sale. The cart is cleared only after the sale
// is durably queued; on any error it is left untouched. A second checkout of
// the same cart while one is in flight fails with CONFLICT.
func (s *service) Checkout(ctx context.Context, sess session.Session, payment Payment) (*models.Sale, error) {
	lease, err := s.carts.BeginCheckout(sess.CartKey())
	if err != nil {
		return nil, err
	}
	completed := false
	defer func() {
		if !completed {
			lease.Abort()
		}
	}()

	engine := lease.Engine()
	if engine.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	totals := engine.ComputeTotals().Rounded()
	split, err := validatePayment(payment, totals.Total, engine.Customer())
	if err != nil {
		return nil, err
	}

	customer := engine.Customer()
	sale := &models.Sale{
		InvoiceNumber: s.queue.NextInvoiceNumber(),
		TerminalID:    sess.TerminalID,
		SalesPoint:    sess.SalesPoint,
		CashierName:   sess.CashierName,
		CashierID:     sess.CashierID,
		CustomerID:    customer.ID,
		CustomerName:  customer.DisplayName(),
		CustomerPhone: customer.ContactNo,
		PaymentMethod: payment.Method,
		SplitDetails:  split,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.ExclusiveTax,
		InclusiveTax:  totals.InclusiveTax,
		Total:         totals.Total,
		Items:         engine.SaleLines(),
	}

	ctx = s.logg.WithInvoiceNumber(ctx, sale.InvoiceNumber)
	if err := s.queue.Append(ctx, sale); err != nil {
		s.logg.Error(ctx, "sale was not recorded", err)
		return nil, err
	}

	lease.Complete()
	completed = true

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"total":          sale.Total.StringFixed(2),
		"payment_method": sale.PaymentMethod.String(),
		"items":          len(sale.Items),
	}), "sale recorded")

	if s.trigger != nil {
		s.trigger.Trigger("checkout")
	}
	return sale, nil
}

func validatePayment(payment Payment, total decimal.Decimal, customer types.Customer) ([]types.SplitPayment, error) {
	if payment.Method == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	if !payment.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", payment.Method))
	}
	if payment.Method == enums.PaymentMethodCredit && customer.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit sales require a registered customer")
	}
	if !payment.Method.IsSplit() {
		return nil, nil
	}

	if len(payment.Split) != splitLegs {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "split payment needs exactly two amounts").
			WithDetails(map[string]any{"legs": len(payment.Split)})
	}
	sum := decimal.Zero
	legs := make([]types.SplitPayment, 0, splitLegs)
	for _, leg := range payment.Split {
		if !leg.Method.IsValid() || leg.Method.IsSplit() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid split payment method %q", leg.Method))
		}
		if leg.Amount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "split amounts cannot be negative")
		}
		sum = sum.Add(leg.Amount)
		legs = append(legs, types.SplitPayment{Method: leg.Method, Amount: cart.Money(leg.Amount)})
	}
	if !cart.Money(sum).Equal(cart.Money(total)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("split amounts add up to %s but the total is %s", cart.Money(sum).StringFixed(2), cart.Money(total).StringFixed(2))).
			WithDetails(map[string]any{"split_sum": cart.Money(sum).StringFixed(2), "total": cart.Money(total).StringFixed(2)})
	}
	return legs, nil
}
