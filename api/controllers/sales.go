package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/api/validators"
	"github.com/angelmondragon/gaspos-terminal/internal/sales"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
	"github.com/angelmondragon/gaspos-terminal/pkg/pagination"
)

// ListSales pages through recorded sales, newest first.
func ListSales(queue sales.Queue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		synced, err := validators.ParseQueryBool(r, "synced")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := queue.List(r.Context(), sales.ListParams{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			Synced: synced,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetSale(queue sales.Queue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoice := strings.TrimSpace(chi.URLParam(r, "invoiceNumber"))
		if invoice == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invoice number is required"))
			return
		}
		sale, err := queue.FindByInvoiceNumber(r.Context(), invoice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}
