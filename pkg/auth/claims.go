package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// CashierPayload captures the identity minted into a till token.
type CashierPayload struct {
	CashierID   string
	CashierName string
	TerminalID  string
	SalesPoint  string
}

// CashierClaims is the typed JWT the POS UI forwards on every call. The backend
// login flow issues it; the terminal only reads it.
type CashierClaims struct {
	CashierID   string `json:"cashier_id"`
	CashierName string `json:"cashier_name"`
	TerminalID  string `json:"terminal_id,omitempty"`
	SalesPoint  string `json:"sales_point,omitempty"`
	jwt.RegisteredClaims
}
