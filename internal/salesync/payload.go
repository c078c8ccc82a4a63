package salesync

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/pkg/backend"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
)

// BuildOrder normalizes a queued sale into the backend order body.
func BuildOrder(sale models.Sale) backend.OrderRequest {
	details := make([]backend.OrderDetail, 0, len(sale.Items))
	for _, item := range sale.Items {
		details = append(details, backend.OrderDetail{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			ProductName: item.Name,
			Unit:        item.Unit,
			Quantity:    quantity(item.Quantity),
			Price:       amount(item.UnitPrice),
			CostPrice:   amount(item.CostPrice),
			Total:       amount(item.LineTotal),
		})
	}

	splits := make([]backend.SplitDetail, 0, len(sale.SplitDetails))
	for _, leg := range sale.SplitDetails {
		splits = append(splits, backend.SplitDetail{Method: leg.Method.String(), Amount: amount(leg.Amount)})
	}

	customer := sale.Customer()
	return backend.OrderRequest{
		InvoiceNumber:     sale.InvoiceNumber,
		CustomerID:        customer.ID,
		CustomerFullName:  customer.DisplayName(),
		CustomerContactNo: customer.ContactNo,
		OrderMethod:       backend.OrderMethodPOS,
		OrderDetails:      details,
		TotalOrderAmount:  amount(sale.Total),
		Tax:               amount(sale.Tax),
		PaymentMethod:     sale.PaymentMethod.String(),
		SplitDetails:      splits,
		Status:            backend.OrderStatusMade,
		Discount:          amount(sale.Discount),
		CashierName:       sale.CashierName,
	}
}

// quantity is sent as stored; weighed goods may carry more than two decimals.
func quantity(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func amount(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
