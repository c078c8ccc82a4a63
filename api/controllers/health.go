package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/pkg/config"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

// Pinger is anything ready checks can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GasPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady requires the local store. Redis is checked only when configured,
// and backend connectivity is reported without failing readiness: the till is
// expected to work offline.
func HealthReady(cfg *config.Config, store Pinger, cache Pinger, monitor OnlineReporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GasPOS-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "local store not configured"))
			return
		}
		if err := store.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "local store unavailable"))
			return
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		backend := "unknown"
		if monitor != nil {
			backend = "offline"
			if monitor.Online() {
				backend = "online"
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "backend": backend})
	}
}
