package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/internal/catalog"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

// GetCatalog serves a catalog resource, falling back to the last stored copy
// when the backend cannot be reached.
func GetCatalog(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.Get(r.Context(), chi.URLParam(r, "resource"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if doc.Stale {
			w.Header().Set("X-Catalog-Stale", "true")
		}
		responses.WriteSuccess(w, doc)
	}
}
