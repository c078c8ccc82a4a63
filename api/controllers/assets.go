package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/internal/assets"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

// AssetServer answers shell requests network first with a cache fallback.
type AssetServer interface {
	Serve(ctx context.Context, r *http.Request) (*assets.Response, error)
}

// Assets proxies everything outside the API to the web shell origin.
func Assets(server AssetServer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := server.Serve(r.Context(), r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for key, values := range resp.Header {
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}
		w.Header().Set("X-Served-From-Cache", strconv.FormatBool(resp.FromCache))
		w.WriteHeader(resp.Status)
		if r.Method != http.MethodHead {
			_, _ = w.Write(resp.Body)
		}
	}
}
