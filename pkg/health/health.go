// Package health exposes liveness and readiness endpoints for the kiosk
// agent. Liveness means the process is up; readiness additionally runs the
// registered checks (backend reachability, mainly) on demand.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one dependency. Nil means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Service tracks readiness checks and serves the probe endpoints.
type Service struct {
	ready atomic.Bool

	mu     sync.Mutex
	checks []check
}

// New returns a Service that reports not-ready until SetReady(true).
func New() *Service {
	return &Service{}
}

// AddReadinessCheck registers a named dependency probe with a per-call
// timeout.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the readiness gate, independent of check results. Used to
// drain before shutdown.
func (s *Service) SetReady(v bool) {
	s.ready.Store(v)
}

type response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint always reports ok while the process serves requests.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// ReadyEndpoint runs every registered check and reports 503 when the gate
// is closed or any check fails.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, response{Status: "draining"})
		return
	}

	s.mu.Lock()
	checks := append([]check(nil), s.checks...)
	s.mu.Unlock()

	results := make(map[string]string, len(checks))
	healthy := true
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		err := c.fn(ctx)
		cancel()
		if err != nil {
			healthy = false
			results[c.name] = err.Error()
		} else {
			results[c.name] = "ok"
		}
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, response{Status: status, Checks: results})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
