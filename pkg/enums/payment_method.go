package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a customer settled a sale at the till.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "bank_transfer"
	PaymentMethodEWallet  PaymentMethod = "e_wallet"
	PaymentMethodCredit   PaymentMethod = "credit"
	// PaymentMethodSplit requires a two-way breakdown that sums to the total.
	PaymentMethodSplit PaymentMethod = "split"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodTransfer,
	PaymentMethodEWallet,
	PaymentMethodCredit,
	PaymentMethodSplit,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsSplit reports whether the method carries a split breakdown.
func (p PaymentMethod) IsSplit() bool {
	return p == PaymentMethodSplit
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPaymentMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
