package session

// Screen is the kiosk screen the session currently shows.
type Screen int

const (
	ScreenCatalog Screen = iota
	ScreenCart
	ScreenCheckout
	ScreenPayment
	ScreenReceipt
)

func (s Screen) String() string {
	switch s {
	case ScreenCatalog:
		return "catalog"
	case ScreenCart:
		return "cart"
	case ScreenCheckout:
		return "checkout"
	case ScreenPayment:
		return "payment"
	case ScreenReceipt:
		return "receipt"
	default:
		return "unknown"
	}
}

// Event triggers a screen transition. Transitions are explicit; nothing
// moves the screen implicitly.
type Event string

const (
	EventGoCart       Event = "goCart"
	EventBack         Event = "back"
	EventCheckout     Event = "checkout"
	EventOrderCreated Event = "orderCreated"
	EventPaid         Event = "paid"
	EventCancel       Event = "cancel"
	EventNew          Event = "new"
	EventIdleTimeout  Event = "idleTimeout"
)

type transition struct {
	from  Screen
	event Event
}

// transitions is the full screen transition table. EventIdleTimeout is
// handled separately: it returns to Catalog from every screen.
var transitions = map[transition]Screen{
	{ScreenCatalog, EventGoCart}:        ScreenCart,
	{ScreenCart, EventBack}:             ScreenCatalog,
	{ScreenCart, EventCheckout}:         ScreenCheckout,
	{ScreenCheckout, EventBack}:         ScreenCart,
	{ScreenCheckout, EventOrderCreated}: ScreenPayment,
	{ScreenPayment, EventPaid}:          ScreenReceipt,
	{ScreenPayment, EventCancel}:        ScreenCatalog,
	{ScreenReceipt, EventNew}:           ScreenCatalog,
}
