//go:build integration

// Package integration runs the kiosk agent end to end against the backend
// simulator: real HTTP on both sides of the bridge, real pollers and
// timers, assertions over the wire only.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/andeanlabs/farmakiosk/internal/domain/cart"
	"github.com/andeanlabs/farmakiosk/internal/domain/checkout"
	"github.com/andeanlabs/farmakiosk/internal/domain/payment"
	"github.com/andeanlabs/farmakiosk/internal/domain/session"
	"github.com/andeanlabs/farmakiosk/internal/gateway"
	"github.com/andeanlabs/farmakiosk/internal/handler"
	"github.com/andeanlabs/farmakiosk/internal/sim"
)

// Response types, defined locally to keep assertions black-box.

type sessionView struct {
	Screen       string     `json:"screen"`
	OrderID      string     `json:"orderId"`
	Items        []cartLine `json:"items"`
	Totals       cartTotals `json:"totals"`
	Submitting   bool       `json:"submitting"`
	Error        string     `json:"error"`
	Missing      []string   `json:"missing"`
	PaymentState string     `json:"paymentState"`
}

type cartLine struct {
	Product struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		PriceCents int64  `json:"priceCents"`
	} `json:"product"`
	Qty int `json:"qty"`
}

type cartTotals struct {
	SubtotalCents int64 `json:"subtotalCents"`
}

type deliveryWindow struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type receiptDoc struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	SubtotalCents int64  `json:"subtotalCents"`
	DeliveryCents int64  `json:"deliveryCents"`
	TotalCents    int64  `json:"totalCents"`
	QRString      string `json:"qrString"`
	Payment       *struct {
		Provider string `json:"provider"`
		Status   string `json:"status"`
	} `json:"payment"`
}

type errorResp struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing"`
}

// stack is one agent + simulator pair.
type stack struct {
	baseURL string
	client  *http.Client
}

// startStack wires the agent the same way app.Run does, with fast payment
// polling and the simulator settling after one extra status poll.
func startStack(t *testing.T) *stack {
	return startStackWith(t, sim.Config{SettleAfter: 1}, 5*time.Millisecond)
}

func startStackWith(t *testing.T, simCfg sim.Config, pollInterval time.Duration) *stack {
	t.Helper()

	backend := httptest.NewServer(sim.NewServer(simCfg, zap.NewNop()).Routes())
	t.Cleanup(backend.Close)

	client := gateway.NewClient(backend.URL)
	store := cart.New()
	planner := checkout.NewWindowPlanner(client)
	poller := payment.NewPoller(client, payment.WithInterval(pollInterval))
	ctrl := session.NewController(session.Config{}, store, checkout.NewValidator(), planner, client, poller)

	ctx, cancel := context.WithCancel(context.Background())
	ctrl.Start(ctx)

	bridge := handler.NewBridge(handler.Config{StoreID: "store-1"}, ctrl, store, planner, client, zap.NewNop())
	agent := httptest.NewServer(bridge.Routes())
	t.Cleanup(func() {
		agent.Close()
		ctrl.Stop()
		cancel()
	})

	return &stack{baseURL: agent.URL, client: &http.Client{Timeout: 10 * time.Second}}
}

// HTTP helpers.

func (s *stack) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(context.Background(), method, s.baseURL+path, &buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (s *stack) session(t *testing.T) sessionView {
	t.Helper()
	resp := s.do(t, http.MethodGet, "/api/session", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/session: status %d", resp.StatusCode)
	}
	return decodeJSON[sessionView](t, resp)
}

func (s *stack) fireEvent(t *testing.T, event string) sessionView {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/session/events", map[string]string{"event": event})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("event %q: status %d", event, resp.StatusCode)
	}
	return decodeJSON[sessionView](t, resp)
}

// waitForScreen polls the session until the screen shows up or the
// deadline passes.
func (s *stack) waitForScreen(t *testing.T, want string) sessionView {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	var last sessionView
	for time.Now().Before(deadline) {
		last = s.session(t)
		if last.Screen == want {
			return last
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("screen never became %q (last: %q, error: %q)", want, last.Screen, last.Error)
	return last
}

func pickupCheckout(name, phone string) map[string]any {
	return map[string]any{
		"customer":    map[string]string{"name": name, "phone": phone},
		"fulfillment": map[string]string{"type": "PICKUP"},
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d", resp.StatusCode, want)
	}
}
