// Package payment drives a payment attempt to a terminal state: create an
// intent, confirm it, then poll the order status until it is confirmed.
package payment

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/andeanlabs/farmakiosk/internal/gateway"
)

// State is the attempt lifecycle position.
type State int

const (
	StateIdle State = iota
	StateIntentCreated
	StateConfirming
	StatePolling
	StatePaid
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIntentCreated:
		return "intent_created"
	case StateConfirming:
		return "confirming"
	case StatePolling:
		return "polling"
	case StatePaid:
		return "paid"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the terminal outcome delivered to the attempt callback. It is
// delivered at most once, and never for a cancelled or superseded attempt.
type Result struct {
	State State
	Err   error
}

// Gateway is the slice of the backend client the poller needs.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, orderID string) (gateway.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, paymentID string) (gateway.ConfirmResult, error)
	GetOrderStatus(ctx context.Context, orderID string) (gateway.OrderStatus, error)
}

// Attempt is one payment run for one order. Its liveness token is scoped to
// the attempt itself, not to any component lifetime: once the token drops,
// in-flight requests resolve into nothing.
type Attempt struct {
	orderID string
	cancel  context.CancelFunc
	done    chan struct{}
	live    atomic.Bool

	mu    sync.Mutex
	state State
	err   error
}

// OrderID returns the order this attempt pays for.
func (a *Attempt) OrderID() string { return a.orderID }

// State returns the current attempt state.
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the failure detail for StateFailed attempts.
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Done is closed when the attempt goroutine has fully stopped.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// Cancel stops the attempt immediately: future timer ticks never fire and
// any in-flight request's result is dropped. Safe to call repeatedly.
func (a *Attempt) Cancel() {
	if a.live.CompareAndSwap(true, false) {
		a.set(StateCancelled, nil)
	}
	a.cancel()
}

func (a *Attempt) set(st State, err error) {
	a.mu.Lock()
	a.state = st
	a.err = err
	a.mu.Unlock()
}

// advance moves a live attempt to an intermediate state. No-op after the
// liveness token dropped.
func (a *Attempt) advance(st State) {
	if a.live.Load() {
		a.set(st, nil)
	}
}

// Poller runs payment attempts. At most one attempt is active at a time;
// starting a new one cancels the previous attempt before it can deliver.
type Poller struct {
	gw        Gateway
	interval  time.Duration
	confirmed string
	lg        *zap.Logger

	mu      sync.Mutex
	current *Attempt
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the status poll interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithLogger sets the poller logger.
func WithLogger(lg *zap.Logger) PollerOption {
	return func(p *Poller) { p.lg = lg }
}

// NewPoller creates a Poller polling every 1.2s for the CONFIRMED status.
func NewPoller(gw Gateway, opts ...PollerOption) *Poller {
	p := &Poller{
		gw:        gw,
		interval:  1200 * time.Millisecond,
		confirmed: "CONFIRMED",
		lg:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins a new attempt for orderID, cancelling any previous attempt
// first. onResult fires at most once, with StatePaid or StateFailed; a
// cancelled or superseded attempt delivers nothing.
func (p *Poller) Start(ctx context.Context, orderID string, onResult func(Result)) *Attempt {
	ctx, cancel := context.WithCancel(ctx)
	a := &Attempt{
		orderID: orderID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	a.live.Store(true)

	p.mu.Lock()
	if p.current != nil {
		p.current.Cancel()
	}
	p.current = a
	p.mu.Unlock()

	p.lg.Info("payment attempt started", zap.String("order_id", orderID))
	go p.run(ctx, a, onResult)
	return a
}

// CancelActive cancels the active attempt, if any.
func (p *Poller) CancelActive() {
	p.mu.Lock()
	a := p.current
	p.current = nil
	p.mu.Unlock()

	if a != nil {
		a.Cancel()
	}
}

// Active returns the current attempt, or nil.
func (p *Poller) Active() *Attempt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Poller) run(ctx context.Context, a *Attempt, onResult func(Result)) {
	defer close(a.done)

	finish := func(st State, err error) {
		if !a.live.CompareAndSwap(true, false) {
			// Cancelled or superseded mid-flight; the result is dropped.
			p.lg.Debug("stale payment result ignored",
				zap.String("order_id", a.orderID),
				zap.Stringer("state", st),
			)
			return
		}
		a.set(st, err)
		p.lg.Info("payment attempt finished",
			zap.String("order_id", a.orderID),
			zap.Stringer("state", st),
			zap.Error(err),
		)
		if onResult != nil {
			onResult(Result{State: st, Err: err})
		}
	}

	intent, err := p.gw.CreatePaymentIntent(ctx, a.orderID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		finish(StateFailed, err)
		return
	}
	a.advance(StateIntentCreated)

	a.advance(StateConfirming)
	if _, err := p.gw.ConfirmPayment(ctx, intent.Payment.ID); err != nil {
		if ctx.Err() != nil {
			return
		}
		finish(StateFailed, err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	a.advance(StatePolling)

	// First status check runs immediately; subsequent ones wait the interval.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		status, err := p.gw.GetOrderStatus(ctx, a.orderID)
		if ctx.Err() != nil {
			// Liveness check before acting on a resolved request.
			return
		}
		if err != nil {
			finish(StateFailed, err)
			return
		}
		if status.Status == p.confirmed {
			finish(StatePaid, nil)
			return
		}
		timer.Reset(p.interval)
	}
}
