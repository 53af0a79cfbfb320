// Package session implements the order session controller: the screen state
// machine that owns the current screen and order id, wires the cart,
// validator, gateway, and payment poller together, and resets the whole
// session when the kiosk sits idle.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/andeanlabs/farmakiosk/internal/domain/cart"
	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
	"github.com/andeanlabs/farmakiosk/internal/domain/checkout"
	"github.com/andeanlabs/farmakiosk/internal/domain/payment"
	"github.com/andeanlabs/farmakiosk/internal/gateway"
	"github.com/andeanlabs/farmakiosk/pkg/money"
)

// Sentinel errors for session operations.
var (
	ErrInvalidTransition = errors.New("invalid transition for current screen")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrSubmitInFlight    = errors.New("submission already in flight")
	ErrValidationFailed  = errors.New("checkout validation failed")
	ErrSessionReset      = errors.New("session was reset")
	ErrNoOrder           = errors.New("no current order")
)

// OrderGateway is the slice of the backend client the controller calls
// directly; polling goes through the payment poller.
type OrderGateway interface {
	CreateOrder(ctx context.Context, draft gateway.OrderDraft) (string, error)
	GetReceipt(ctx context.Context, orderID string) (catalog.Receipt, error)
}

// Config holds controller timing. Zero values pick the deployment defaults.
type Config struct {
	IdleTimeout   time.Duration // session reset after no interaction, default 5m
	ReceiptReturn time.Duration // auto-return from the receipt screen, default 20s
}

func (c *Config) setDefaults() {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 5 * time.Minute
	}
	if c.ReceiptReturn <= 0 {
		c.ReceiptReturn = 20 * time.Second
	}
}

// View is a read-only snapshot of the session for the UI.
type View struct {
	Screen          string              `json:"screen"`
	OrderID         string              `json:"orderId,omitempty"`
	Items           []cart.Item         `json:"items"`
	Totals          cart.Totals         `json:"totals"`
	SubtotalDisplay string              `json:"subtotalDisplay"`
	Submitting      bool                `json:"submitting"`
	Error           string              `json:"error,omitempty"`
	Missing         []checkout.FieldTag `json:"missing,omitempty"`
	PaymentState    string              `json:"paymentState,omitempty"`
}

// Controller is the session state machine. It is the sole owner of the
// current screen and order id; every mutation goes through an explicit
// event.
type Controller struct {
	lg        *zap.Logger
	cart      *cart.Store
	validator *checkout.Validator
	planner   *checkout.WindowPlanner
	orders    OrderGateway
	poller    *payment.Poller
	cfg       Config
	onReceipt func(catalog.Receipt)

	watchdog *Watchdog
	ctx      context.Context
	ctxOnce  sync.Once

	mu           sync.Mutex
	screen       Screen
	orderID      string
	submitting   bool
	lastError    string
	missing      []checkout.FieldTag
	receiptTimer *time.Timer
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithReceiptHook registers fn to run with every receipt the session
// fetches. Used for the order journal; failures inside fn are the hook's
// own business.
func WithReceiptHook(fn func(catalog.Receipt)) ControllerOption {
	return func(c *Controller) { c.onReceipt = fn }
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(lg *zap.Logger) ControllerOption {
	return func(c *Controller) { c.lg = lg }
}

// NewController wires the session controller. The initial state is the
// catalog screen with an empty cart and no order.
func NewController(
	cfg Config,
	store *cart.Store,
	validator *checkout.Validator,
	planner *checkout.WindowPlanner,
	orders OrderGateway,
	poller *payment.Poller,
	opts ...ControllerOption,
) *Controller {
	cfg.setDefaults()
	c := &Controller{
		lg:        zap.NewNop(),
		cart:      store,
		validator: validator,
		planner:   planner,
		orders:    orders,
		poller:    poller,
		cfg:       cfg,
		screen:    ScreenCatalog,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.watchdog = NewWatchdog(cfg.IdleTimeout, c.idleTimeout)
	return c
}

// Start arms the idle watchdog and pins the context used for background
// work (payment attempts) that must outlive individual UI requests.
func (c *Controller) Start(ctx context.Context) {
	c.ctxOnce.Do(func() { c.ctx = ctx })
	c.watchdog.Arm()
}

// Stop tears the session down: watchdog stopped, payment attempt cancelled,
// receipt timer cleared.
func (c *Controller) Stop() {
	c.watchdog.Stop()
	c.poller.CancelActive()

	c.mu.Lock()
	c.stopReceiptTimerLocked()
	c.mu.Unlock()
}

// Touch reports a raw user interaction and resets the idle countdown.
func (c *Controller) Touch() {
	c.watchdog.Touch()
}

// Screen returns the current screen.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// OrderID returns the current order id, or "" outside the payment/receipt
// flow.
func (c *Controller) OrderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderID
}

// Snapshot returns the session view for the UI.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	screen := c.screen
	orderID := c.orderID
	submitting := c.submitting
	lastError := c.lastError
	missing := append([]checkout.FieldTag(nil), c.missing...)
	c.mu.Unlock()

	totals := c.cart.Totals()
	v := View{
		Screen:          screen.String(),
		OrderID:         orderID,
		Items:           c.cart.Snapshot(),
		Totals:          totals,
		SubtotalDisplay: money.FormatCents(totals.SubtotalCents),
		Submitting:      submitting,
		Error:           lastError,
		Missing:         missing,
	}
	if a := c.poller.Active(); a != nil && a.OrderID() == orderID {
		v.PaymentState = a.State().String()
	}
	return v
}

// Apply fires a user-triggered event. Guarded events (checkout on an empty
// cart) fail without changing the screen.
func (c *Controller) Apply(event Event) error {
	c.mu.Lock()

	if event == EventCheckout && c.cart.Len() == 0 {
		c.mu.Unlock()
		return ErrEmptyCart
	}

	next, ok := transitions[transition{c.screen, event}]
	if !ok {
		c.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "%s on %s", event, c.screen)
	}

	from := c.screen
	c.screen = next
	c.lastError = ""
	c.missing = nil
	if next == ScreenReceipt {
		c.armReceiptTimerLocked()
	} else {
		c.stopReceiptTimerLocked()
	}

	reset := next == ScreenCatalog && event != EventBack
	if reset {
		c.orderID = ""
	}
	c.mu.Unlock()

	c.lg.Info("screen transition",
		zap.Stringer("from", from),
		zap.Stringer("to", next),
		zap.String("event", string(event)),
	)

	if reset {
		// cancel/new re-enter catalog as the universal reset point.
		c.resetCollaborators()
	}
	return nil
}

// idleTimeout forces the session back to the catalog from any screen.
// It is a normal transition, not an error.
func (c *Controller) idleTimeout() {
	c.mu.Lock()
	from := c.screen
	c.screen = ScreenCatalog
	c.orderID = ""
	c.lastError = ""
	c.missing = nil
	c.stopReceiptTimerLocked()
	c.mu.Unlock()

	c.lg.Info("idle timeout, session reset", zap.Stringer("from", from))
	c.resetCollaborators()
}

// IdleTimeout is the test/bridge-visible version of the watchdog firing.
func (c *Controller) IdleTimeout() {
	c.idleTimeout()
}

// resetCollaborators clears everything a new customer must not inherit.
// Runs outside the controller lock: the cart notifies listeners that may
// read back into the controller.
func (c *Controller) resetCollaborators() {
	c.poller.CancelActive()
	c.cart.Clear()
	c.planner.Reset()
}

// Submit validates the checkout form and creates the order. At most one
// submission is in flight per session; a retry after failure is a new
// explicit call. On success the session moves to the payment screen and
// the payment attempt starts.
func (c *Controller) Submit(ctx context.Context, customer checkout.CustomerInfo, fulfillment checkout.Fulfillment) error {
	c.mu.Lock()
	if c.screen != ScreenCheckout {
		c.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "submit on %s", c.screen)
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	// Claimed together with the check so a double-tap cannot slip two
	// submissions past the guard.
	c.submitting = true
	c.mu.Unlock()

	items := c.cart.Snapshot()
	fulfillment, windows := c.deliveryContext(fulfillment)
	result := c.validator.Validate(items, customer, fulfillment, windows)

	c.mu.Lock()
	if !result.OK {
		c.submitting = false
		c.missing = result.Missing
		c.lastError = ""
		c.mu.Unlock()
		return ErrValidationFailed
	}
	c.missing = nil
	c.mu.Unlock()

	orderID, err := c.orders.CreateOrder(ctx, buildDraft(items, customer, fulfillment))

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		// Surfaced as local state; the submit affordance is live again.
		c.lastError = userMessage(err)
		c.mu.Unlock()
		return err
	}
	if c.screen != ScreenCheckout {
		// The session was reset while the request was in flight; the
		// created order is abandoned rather than resurrected.
		c.mu.Unlock()
		c.lg.Warn("order created after session reset, dropping", zap.String("order_id", orderID))
		return ErrSessionReset
	}
	c.screen = ScreenPayment
	c.orderID = orderID
	c.lastError = ""
	c.mu.Unlock()

	c.lg.Info("order created", zap.String("order_id", orderID))
	c.startPayment(orderID)
	return nil
}

// deliveryContext resolves a delivery fulfillment against the window
// planner: an omitted window id falls back to the planner's selection, and
// windows fetched for a different (store, date) key cannot vouch for the
// draft, so the draft validates against an empty list and fails on the
// window rule.
func (c *Controller) deliveryContext(f checkout.Fulfillment) (checkout.Fulfillment, []catalog.DeliveryWindow) {
	windows := c.planner.Windows()
	if !f.IsDelivery() || f.Delivery == nil {
		return f, windows
	}

	d := *f.Delivery
	if d.WindowID == "" {
		d.WindowID = c.planner.Selected()
	}
	f.Delivery = &d

	if storeID, date := c.planner.Key(); d.StoreID != storeID || d.Date != date {
		windows = nil
	}
	return f, windows
}

// startPayment launches the poller attempt on the session's long-lived
// context so it survives the UI request that triggered it.
func (c *Controller) startPayment(orderID string) {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	c.poller.Start(ctx, orderID, func(r payment.Result) {
		c.handlePaymentResult(orderID, r)
	})
}

func (c *Controller) handlePaymentResult(orderID string, r payment.Result) {
	c.mu.Lock()
	if c.screen != ScreenPayment || c.orderID != orderID {
		// Stale result: the user navigated away before it landed.
		c.mu.Unlock()
		return
	}

	switch r.State {
	case payment.StatePaid:
		c.screen = ScreenReceipt
		c.lastError = ""
		c.armReceiptTimerLocked()
		c.mu.Unlock()
		c.lg.Info("payment confirmed", zap.String("order_id", orderID))
	case payment.StateFailed:
		c.lastError = userMessage(r.Err)
		c.mu.Unlock()
		c.lg.Warn("payment failed", zap.String("order_id", orderID), zap.Error(r.Err))
	default:
		c.mu.Unlock()
	}
}

// Receipt fetches the receipt for the current order and feeds the receipt
// hook. Only meaningful on the receipt screen.
func (c *Controller) Receipt(ctx context.Context) (catalog.Receipt, error) {
	c.mu.Lock()
	orderID := c.orderID
	c.mu.Unlock()

	if orderID == "" {
		return catalog.Receipt{}, ErrNoOrder
	}

	rec, err := c.orders.GetReceipt(ctx, orderID)
	if err != nil {
		return catalog.Receipt{}, err
	}
	if c.onReceipt != nil {
		c.onReceipt(rec)
	}
	return rec, nil
}

// armReceiptTimerLocked starts the auto-return countdown for the receipt
// screen. Caller holds the lock.
func (c *Controller) armReceiptTimerLocked() {
	c.stopReceiptTimerLocked()
	c.receiptTimer = time.AfterFunc(c.cfg.ReceiptReturn, func() {
		// Fires EventNew; harmless if the user already left the screen.
		_ = c.Apply(EventNew)
	})
}

func (c *Controller) stopReceiptTimerLocked() {
	if c.receiptTimer != nil {
		c.receiptTimer.Stop()
		c.receiptTimer = nil
	}
}

func buildDraft(items []cart.Item, customer checkout.CustomerInfo, f checkout.Fulfillment) gateway.OrderDraft {
	draftItems := make([]gateway.OrderItem, len(items))
	for i, it := range items {
		draftItems[i] = gateway.OrderItem{ProductID: it.Product.ID, Qty: it.Qty}
	}

	draft := gateway.OrderDraft{
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
		Items:           draftItems,
		FulfillmentType: f.Type,
	}
	if draft.FulfillmentType == "" {
		draft.FulfillmentType = checkout.FulfillmentPickup
	}
	if f.IsDelivery() {
		draft.Delivery = f.Delivery
	}
	return draft
}

// userMessage extracts the text shown on screen for a failure: the
// backend's own message when it sent one, the error text otherwise.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
