// Package cart implements the mutable, observable cart owned by a kiosk
// session. The store knows nothing about screens or the network; it is a
// pure state container with change notification.
package cart

import (
	"sync"

	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
	"github.com/andeanlabs/farmakiosk/pkg/money"
)

// Item is a cart line: one product plus a quantity that is always >= 1
// while the line exists.
type Item struct {
	Product catalog.Product `json:"product"`
	Qty     int             `json:"qty"`
}

// Totals holds derived cart totals. Recomputed on demand, never cached.
type Totals struct {
	SubtotalCents int64 `json:"subtotalCents"`
}

// Store is the authoritative cart state for one session. Construct it with
// New and pass it by reference; there is no package-level instance.
//
// All mutations go through Add, SetQuantity, and Clear. Readers get
// point-in-time copies via Snapshot and must re-snapshot to observe later
// mutations.
type Store struct {
	mu        sync.Mutex
	items     []Item
	listeners map[int]func()
	nextSub   int
}

// New returns an empty cart store.
func New() *Store {
	return &Store{listeners: make(map[int]func())}
}

// Add increments the quantity of an existing line for the product or
// inserts a new line with qty 1. It cannot fail.
func (s *Store) Add(p catalog.Product) {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].Product.ID == p.ID {
			s.items[i].Qty++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, Item{Product: p, Qty: 1})
	}
	listeners := s.listenerSnapshot()
	s.mu.Unlock()

	notify(listeners)
}

// SetQuantity sets the quantity of an existing line. A qty <= 0 removes the
// line. An unknown product ID inserts nothing: the store has no product
// record to attach, so the call is a no-op apart from notification.
func (s *Store) SetQuantity(productID string, qty int) {
	s.mu.Lock()
	if qty <= 0 {
		kept := s.items[:0]
		for _, it := range s.items {
			if it.Product.ID != productID {
				kept = append(kept, it)
			}
		}
		s.items = kept
	} else {
		for i := range s.items {
			if s.items[i].Product.ID == productID {
				s.items[i].Qty = qty
				break
			}
		}
	}
	listeners := s.listenerSnapshot()
	s.mu.Unlock()

	notify(listeners)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	listeners := s.listenerSnapshot()
	s.mu.Unlock()

	notify(listeners)
}

// Snapshot returns a point-in-time copy of the cart lines in insertion
// order. The caller may hold it indefinitely; it never aliases live state.
func (s *Store) Snapshot() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Totals computes the subtotal over the current lines.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subtotal int64
	for _, it := range s.items {
		subtotal += money.Line(it.Product.PriceCents, it.Qty)
	}
	return Totals{SubtotalCents: subtotal}
}

// Len reports the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe registers fn to run after every mutating operation and returns
// an unsubscribe func. Unsubscribing during a notification does not affect
// delivery to the other listeners of that notification.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// listenerSnapshot copies the current listener set. Must be called with the
// lock held; notification itself happens outside the lock so listeners can
// re-enter the store.
func (s *Store) listenerSnapshot() []func() {
	out := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
