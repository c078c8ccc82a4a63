package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gaspos-terminal/internal/assets"
	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	checkoutsvc "github.com/angelmondragon/gaspos-terminal/internal/checkout"
	"github.com/angelmondragon/gaspos-terminal/internal/drafts"
	"github.com/angelmondragon/gaspos-terminal/internal/sales"
	"github.com/angelmondragon/gaspos-terminal/internal/salesync"
	"github.com/angelmondragon/gaspos-terminal/internal/session"
	"github.com/angelmondragon/gaspos-terminal/pkg/config"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/dbtest"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
	"github.com/angelmondragon/gaspos-terminal/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type memoryIdempotency struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryIdempotency) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryIdempotency) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryIdempotency) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

type stubRunner struct{}

func (stubRunner) Drain(context.Context, string) (*salesync.Result, error) {
	return &salesync.Result{Trigger: "manual"}, nil
}
func (stubRunner) LastResult() *salesync.Result { return nil }
func (stubRunner) Running() bool                { return false }

type stubAssets struct{}

func (stubAssets) Serve(_ context.Context, r *http.Request) (*assets.Response, error) {
	return &assets.Response{Status: http.StatusOK, Header: http.Header{}, Body: []byte("shell:" + r.URL.Path)}, nil
}

type fixture struct {
	handler http.Handler
	queue   sales.Queue
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Env: "test", CORSOrigins: "http://localhost:8080"},
		Terminal: config.TerminalConfig{ID: "till-1", SalesPoint: "Main", CashierName: "Cashier"},
	}
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	client := dbtest.Open(t)

	queue, err := sales.NewQueue(context.Background(), sales.NewRepository(client.DB()))
	require.NoError(t, err)
	draftSvc, err := drafts.NewService(client, drafts.NewRepository(client.DB()), 0, time.Now)
	require.NoError(t, err)
	carts := cart.NewRegistry()
	checkout, err := checkoutsvc.NewService(carts, queue, nil, logg)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics.NewSyncMetrics(reg).SetQueueDepth(0)

	return fixture{
		queue: queue,
		handler: NewRouter(Deps{
			Config:      cfg,
			Logger:      logg,
			Store:       client,
			Gatherer:    reg,
			Resolver:    session.NewResolver(cfg.Terminal, cfg.Auth),
			Idempotency: &memoryIdempotency{data: map[string]string{}},
			Carts:       carts,
			Checkout:    checkout,
			Sales:       queue,
			Drafts:      draftSvc,
			Sync:        stubRunner{},
			Assets:      stubAssets{},
		}),
	}
}

func (f fixture) do(t *testing.T, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	f.handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/live", nil, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/ready", nil, nil).Code)

	resp := f.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "gaspos_sales_unsynced")
}

func TestCartsAreScopedPerTerminal(t *testing.T) {
	f := newFixture(t)
	item := map[string]string{"product_id": "1", "name": "LPG", "unit_price": "950"}

	resp := f.do(t, http.MethodPost, "/api/pos/cart/items", item, map[string]string{session.HeaderTerminalID: "till-7"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	other := f.do(t, http.MethodGet, "/api/pos/cart", nil, nil)
	assert.NotContains(t, other.Body.String(), `"name":"LPG"`)

	mine := f.do(t, http.MethodGet, "/api/pos/cart", nil, map[string]string{session.HeaderTerminalID: "till-7"})
	assert.Contains(t, mine.Body.String(), `"name":"LPG"`)
}

func TestCheckoutReplaysWithIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.do(t, http.MethodPost, "/api/pos/cart/items", map[string]string{"product_id": "1", "name": "LPG", "unit_price": "950"}, nil)

	headers := map[string]string{"Idempotency-Key": "sale-1"}
	first := f.do(t, http.MethodPost, "/api/pos/checkout", map[string]string{"method": "cash"}, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := f.do(t, http.MethodPost, "/api/pos/checkout", map[string]string{"method": "cash"}, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	n, err := f.queue.CountUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// without a key the empty cart is rejected
	third := f.do(t, http.MethodPost, "/api/pos/checkout", map[string]string{"method": "cash"}, nil)
	assert.Equal(t, http.StatusBadRequest, third.Code)

	list := f.do(t, http.MethodGet, "/api/pos/sales?synced=false", nil, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"payment_method":"cash"`)
}

func TestUnknownPathsFallThroughToShell(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/pos/index.html", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Body.String(), "shell:/pos/index.html"))

	resp = f.do(t, http.MethodGet, "/api/pos/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
