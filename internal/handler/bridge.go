// Package handler implements the loopback HTTP bridge between the kiosk
// touch UI and the session controller. The bridge is the only way the UI
// reads or mutates session state; it never exposes backend credentials or
// internal state beyond the session view.
package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andeanlabs/farmakiosk/internal/domain/cart"
	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
	"github.com/andeanlabs/farmakiosk/internal/domain/checkout"
	"github.com/andeanlabs/farmakiosk/internal/domain/session"
)

// Backend is the slice of the store backend client the bridge proxies for
// the UI.
type Backend interface {
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	ListProducts(ctx context.Context, categoryID, query string) ([]catalog.Product, error)
	ListDeliveryWindows(ctx context.Context, storeID, date string) ([]catalog.DeliveryWindow, error)
}

// Config holds non-dependency bridge configuration.
type Config struct {
	// StoreID is the kiosk's home store, used when the UI omits one on
	// delivery window requests.
	StoreID string
}

// Bridge serves the local UI API. Every request counts as user activity
// and feeds the idle watchdog.
type Bridge struct {
	cfg     Config
	lg      *zap.Logger
	ctrl    *session.Controller
	cart    *cart.Store
	planner *checkout.WindowPlanner
	backend Backend

	// products caches the catalog by id so cart additions resolve locally.
	// Refreshed on miss; the kiosk catalog is small.
	mu       sync.Mutex
	products map[string]catalog.Product
}

// NewBridge constructs the bridge handler.
func NewBridge(
	cfg Config,
	ctrl *session.Controller,
	store *cart.Store,
	planner *checkout.WindowPlanner,
	backend Backend,
	lg *zap.Logger,
) *Bridge {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Bridge{
		cfg:      cfg,
		lg:       lg,
		ctrl:     ctrl,
		cart:     store,
		planner:  planner,
		backend:  backend,
		products: make(map[string]catalog.Product),
	}
}

// Routes builds the UI API router. All /api routes touch the idle
// watchdog; probe endpoints are mounted by the caller and do not.
func (b *Bridge) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(b.touch)

		r.Get("/session", b.getSession)
		r.Post("/session/events", b.postEvent)

		r.Post("/cart/items", b.addCartItem)
		r.Put("/cart/items/{productID}", b.setCartQuantity)
		r.Delete("/cart", b.clearCart)

		r.Post("/checkout", b.submitCheckout)
		r.Get("/receipt", b.getReceipt)

		r.Get("/catalog/categories", b.listCategories)
		r.Get("/catalog/products", b.listProducts)
		r.Get("/delivery/windows", b.listWindows)
		r.Post("/delivery/select", b.selectWindow)
	})
	return r
}

// touch resets the idle countdown on every UI request.
func (b *Bridge) touch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.ctrl.Touch()
		next.ServeHTTP(w, r)
	})
}

// lookupProduct resolves a product id against the local cache, refreshing
// the cache from the backend on a miss.
func (b *Bridge) lookupProduct(ctx context.Context, id string) (catalog.Product, bool, error) {
	b.mu.Lock()
	p, ok := b.products[id]
	b.mu.Unlock()
	if ok {
		return p, true, nil
	}

	all, err := b.backend.ListProducts(ctx, "", "")
	if err != nil {
		return catalog.Product{}, false, err
	}

	b.mu.Lock()
	for _, p := range all {
		b.products[p.ID] = p
	}
	p, ok = b.products[id]
	b.mu.Unlock()
	return p, ok, nil
}

// cacheProducts remembers listed products for later cart additions.
func (b *Bridge) cacheProducts(products []catalog.Product) {
	b.mu.Lock()
	for _, p := range products {
		b.products[p.ID] = p
	}
	b.mu.Unlock()
}
