package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, opts ...Option) *Client {
	t.Helper()
	opts = append(opts, WithHTTPClient(&http.Client{Transport: rt}))
	client, err := NewClient("http://pos.test/api/", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestSubmitOrderSendsPayload(t *testing.T) {
	var (
		capturedURL    string
		capturedMethod string
		capturedAuth   string
		payload        map[string]any
	)
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedMethod = req.Method
		capturedAuth = req.Header.Get("Authorization")
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		return respond(http.StatusCreated, `{"ok":true}`), nil
	}, WithToken("secret"))

	err := client.SubmitOrder(context.Background(), OrderRequest{
		InvoiceNumber:    "INV-1",
		CustomerFullName: "Walk-in",
		OrderMethod:      OrderMethodPOS,
		OrderDetails:     []OrderDetail{{ProductID: "7", ProductName: "LPG 11kg", Quantity: 1.5, Price: 100, Total: 150}},
		TotalOrderAmount: 150,
		PaymentMethod:    "cash",
		Status:           OrderStatusMade,
		CashierName:      "Ana",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if capturedURL != "http://pos.test/api/order" || capturedMethod != http.MethodPost {
		t.Fatalf("unexpected request %s %s", capturedMethod, capturedURL)
	}
	if capturedAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", capturedAuth)
	}
	if payload["status"] != "order_made" || payload["order_method"] != "pos" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if payload["total_order_amount"] != 150.0 {
		t.Fatalf("expected numeric total, got %v", payload["total_order_amount"])
	}
	details := payload["order_details"].([]any)
	if len(details) != 1 || details[0].(map[string]any)["quantity"] != 1.5 {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestSubmitOrderNon2xxIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusUnprocessableEntity, "bad order"), nil
	})
	err := client.SubmitOrder(context.Background(), OrderRequest{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if StatusCode(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", StatusCode(err))
	}
	if !pkgerrors.IsRetryable(err) {
		t.Fatal("backend rejections stay retryable")
	}
}

func TestSubmitOrderTransportError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	err := client.SubmitOrder(context.Background(), OrderRequest{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if StatusCode(err) != 0 {
		t.Fatalf("transport errors carry no status, got %d", StatusCode(err))
	}
}

func TestGetReturnsBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/tax" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		return respond(http.StatusOK, `[{"product_id":1}]`), nil
	})
	body, err := client.Get(context.Background(), "/tax")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != `[{"product_id":1}]` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestProbeTreatsAnyAnswerAsReachable(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		calls++
		if req.URL.Path != "/api/ping" {
			t.Fatalf("unexpected probe path %s", req.URL.Path)
		}
		if calls == 1 {
			return respond(http.StatusInternalServerError, ""), nil
		}
		return nil, errors.New("no route to host")
	}, WithHealthPath("/ping"))

	if err := client.Probe(context.Background()); err != nil {
		t.Fatalf("5xx still means reachable: %v", err)
	}
	if err := client.Probe(context.Background()); err == nil {
		t.Fatal("expected transport failure to report offline")
	}
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	if _, err := NewClient(" "); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := NewClient("not a url"); err == nil {
		t.Fatal("expected error for relative base url")
	}
}
