package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
	"github.com/angelmondragon/gaspos-terminal/pkg/types"
)

// Sale is a finalized transaction waiting for, or done with, upload. Only Synced
// and SyncedAt change after insert.
type Sale struct {
	Seq           int64                `gorm:"column:seq;primaryKey;autoIncrement" json:"seq"`
	InvoiceNumber string               `gorm:"column:invoice_number;not null;uniqueIndex" json:"invoice_number"`
	TerminalID    string               `gorm:"column:terminal_id;not null" json:"terminal_id"`
	SalesPoint    string               `gorm:"column:sales_point;not null" json:"sales_point"`
	CashierName   string               `gorm:"column:cashier_name;not null" json:"cashier_name"`
	CashierID     string               `gorm:"column:cashier_id;not null" json:"cashier_id"`
	CustomerID    string               `gorm:"column:customer_id;not null" json:"customer_id"`
	CustomerName  string               `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerPhone string               `gorm:"column:customer_phone;not null" json:"customer_phone"`
	PaymentMethod enums.PaymentMethod  `gorm:"column:payment_method;not null" json:"payment_method"`
	SplitDetails  []types.SplitPayment `gorm:"column:split_details;serializer:json" json:"split_details"`
	Subtotal      decimal.Decimal      `gorm:"column:subtotal;not null" json:"subtotal"`
	Discount      decimal.Decimal      `gorm:"column:discount;not null" json:"discount"`
	Tax           decimal.Decimal      `gorm:"column:tax;not null" json:"tax"`
	InclusiveTax  decimal.Decimal      `gorm:"column:inclusive_tax;not null" json:"inclusive_tax"`
	Total         decimal.Decimal      `gorm:"column:total;not null" json:"total"`
	Items         []types.SaleLineItem `gorm:"column:items;serializer:json;not null" json:"items"`
	Synced        bool                 `gorm:"column:synced;not null;default:false" json:"synced"`
	SyncedAt      *time.Time           `gorm:"column:synced_at" json:"synced_at"`
	CreatedAt     time.Time            `gorm:"column:created_at;not null" json:"created_at"`
}

func (Sale) TableName() string { return "sales" }

// Customer rebuilds the customer reference captured at checkout.
func (s Sale) Customer() types.Customer {
	return types.Customer{ID: s.CustomerID, FullName: s.CustomerName, ContactNo: s.CustomerPhone}
}
