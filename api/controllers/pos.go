package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/gaspos-terminal/internal/session"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
)

func sessionFromRequest(r *http.Request) (session.Session, error) {
	sess, ok := session.FromContext(r.Context())
	if !ok || sess.TerminalID == "" {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "terminal session required")
	}
	return sess, nil
}

func lineIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "line index must be a non-negative integer").
			WithDetails(map[string]any{"index": raw})
	}
	return index, nil
}
