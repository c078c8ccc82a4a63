package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/internal/session"
	"github.com/angelmondragon/gaspos-terminal/pkg/config"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

var testSession = session.Session{TerminalID: "till-1", SalesPoint: "Main", CashierName: "Ana"}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

// newTestRouter mounts handlers behind a fixed session, the way the session
// middleware would.
func newTestRouter(mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithSession(req.Context(), testSession)))
		})
	})
	mount(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, resp.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) responses.ErrorBody {
	t.Helper()
	var envelope responses.ErrorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (body %s)", err, resp.Body.String())
	}
	return envelope.Error
}

func TestHandlersRequireSession(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/cart", GetCart(nil, testLogger()))
	resp := doJSON(t, r, http.MethodGet, "/cart", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestLineIndexRejectsNegative(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	var got error
	r.Get("/items/{index}", func(w http.ResponseWriter, req *http.Request) {
		_, got = lineIndex(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/-1", nil))
	if got == nil {
		t.Fatal("expected error for negative index")
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/2", nil))
	if got != nil {
		t.Fatalf("unexpected error: %v", got)
	}
}


func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}
