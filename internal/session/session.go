// Package session resolves who is operating the till for the current request.
package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/gaspos-terminal/pkg/auth"
	"github.com/angelmondragon/gaspos-terminal/pkg/config"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
)

const (
	HeaderTerminalID  = "X-Terminal-Id"
	HeaderSalesPoint  = "X-Sales-Point"
	HeaderCashierName = "X-Cashier-Name"
	HeaderCashierID   = "X-Cashier-Id"
)

// Session is the cashier and terminal identity attached to a request.
type Session struct {
	TerminalID  string `json:"terminal_id"`
	SalesPoint  string `json:"sales_point"`
	CashierName string `json:"cashier_name"`
	CashierID   string `json:"cashier_id,omitempty"`
}

// CartKey names the cart owned by this session: one per terminal.
func (s Session) CartKey() string {
	return s.TerminalID
}

type ctxKey struct{}

// WithSession stores s on ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session resolved for this request.
func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Resolver builds a Session from a request. Claims from a bearer token win over
// the X- headers, which win over the configured terminal defaults.
type Resolver struct {
	defaults config.TerminalConfig
	auth     config.AuthConfig
}

func NewResolver(defaults config.TerminalConfig, authCfg config.AuthConfig) *Resolver {
	return &Resolver{defaults: defaults, auth: authCfg}
}

// Defaults is the session used by background work with no request.
func (r *Resolver) Defaults() Session {
	return Session{
		TerminalID:  r.defaults.ID,
		SalesPoint:  r.defaults.SalesPoint,
		CashierName: r.defaults.CashierName,
	}
}

func (r *Resolver) Resolve(req *http.Request) (Session, error) {
	s := r.Defaults()
	overlay(&s.TerminalID, req.Header.Get(HeaderTerminalID))
	overlay(&s.SalesPoint, req.Header.Get(HeaderSalesPoint))
	overlay(&s.CashierName, req.Header.Get(HeaderCashierName))
	overlay(&s.CashierID, req.Header.Get(HeaderCashierID))

	token := bearerToken(req.Header.Get("Authorization"))
	if token == "" {
		return s, nil
	}
	claims, err := auth.ParseCashierToken(r.auth, token)
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	overlay(&s.TerminalID, claims.TerminalID)
	overlay(&s.SalesPoint, claims.SalesPoint)
	overlay(&s.CashierName, claims.CashierName)
	overlay(&s.CashierID, claims.CashierID)
	return s, nil
}

func overlay(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func bearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
