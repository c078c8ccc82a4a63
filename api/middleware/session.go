package middleware

import (
	"net/http"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/internal/session"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

// Session resolves the terminal/cashier context once per request.
func Session(resolver *session.Resolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := resolver.Resolve(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := session.WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithTerminalID(ctx, sess.TerminalID)
				ctx = logg.WithCashier(ctx, sess.CashierName)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
