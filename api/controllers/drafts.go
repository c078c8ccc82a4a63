package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/api/validators"
	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	"github.com/angelmondragon/gaspos-terminal/internal/drafts"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

type saveDraftRequest struct {
	Label string `json:"label" validate:"max=120"`
	// Clear empties the cart once the draft is stored.
	Clear bool `json:"clear"`
}

// SaveDraft parks the session cart.
func SaveDraft(svc drafts.Service, carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload saveDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var saved *models.PosDraft
		err = carts.Do(sess.CartKey(), func(e *cart.Engine) error {
			if e.IsEmpty() {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			draft, err := svc.Save(r.Context(), drafts.SaveInput{
				TerminalID: sess.TerminalID,
				Label:      validators.SanitizeString(payload.Label, 120),
				Snapshot:   e.Snapshot(),
				Total:      e.ComputeTotals().Rounded().Total,
			})
			if err != nil {
				return err
			}
			if payload.Clear {
				e.Clear()
			}
			saved = draft
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, saved)
	}
}

func ListDrafts(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.List(r.Context(), sess.TerminalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// LoadDraft restores a draft into the session cart, replacing its contents.
// The draft is consumed.
func LoadDraft(svc drafts.Service, carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var resp cartResponse
		err = carts.Do(sess.CartKey(), func(e *cart.Engine) error {
			draft, err := svc.Load(r.Context(), id)
			if err != nil {
				return err
			}
			e.Restore(draft.Snapshot)
			resp = newCartResponse(e)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func DeleteDraft(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearDrafts removes every draft of the session terminal.
func ClearDrafts(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		removed, err := svc.Clear(r.Context(), sess.TerminalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"removed": removed})
	}
}

func draftID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "draftId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid draft id").WithDetails(map[string]any{"draftId": raw})
	}
	return id, nil
}
