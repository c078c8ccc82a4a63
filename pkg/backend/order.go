package backend

const (
	OrderMethodPOS  = "pos"
	OrderStatusMade = "order_made"
)

// OrderRequest is the body of POST /order. Amounts are plain JSON numbers.
type OrderRequest struct {
	InvoiceNumber     string        `json:"invoice_number"`
	CustomerID        string        `json:"customer_id"`
	CustomerFullName  string        `json:"customer_fullname"`
	CustomerContactNo string        `json:"customer_contact_no"`
	OrderMethod       string        `json:"order_method"`
	OrderDetails      []OrderDetail `json:"order_details"`
	TotalOrderAmount  float64       `json:"total_order_amount"`
	Tax               float64       `json:"tax"`
	PaymentMethod     string        `json:"payment_method"`
	SplitDetails      []SplitDetail `json:"split_details"`
	Status            string        `json:"status"`
	Discount          float64       `json:"discount"`
	CashierName       string        `json:"cashier_name"`
}

// OrderDetail is one line of an order.
type OrderDetail struct {
	ProductID   string  `json:"product_id"`
	VariationID string  `json:"variation_id"`
	ProductName string  `json:"product_name"`
	Unit        string  `json:"unit,omitempty"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	CostPrice   float64 `json:"cost_price"`
	Total       float64 `json:"total"`
}

type SplitDetail struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}
