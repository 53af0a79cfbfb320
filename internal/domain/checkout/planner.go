package checkout

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
)

// ErrUnknownWindow is returned when selecting a window id that is not in
// the currently loaded list.
var ErrUnknownWindow = errors.New("delivery window not in current list")

// WindowClient fetches delivery windows for a store and date.
type WindowClient interface {
	ListDeliveryWindows(ctx context.Context, storeID, date string) ([]catalog.DeliveryWindow, error)
}

// WindowPlanner owns the delivery window list for the session's current
// (store, date) key and the window selected from it.
//
// Changing the key clears both the list and the selection, so a stale
// window id from a previous date or store can never survive into a draft.
// A fetch that resolves after the key has moved on is discarded.
type WindowPlanner struct {
	client WindowClient

	mu       sync.Mutex
	storeID  string
	date     string
	gen      uint64
	windows  []catalog.DeliveryWindow
	selected string
}

// NewWindowPlanner returns a planner with no key and no windows.
func NewWindowPlanner(client WindowClient) *WindowPlanner {
	return &WindowPlanner{client: client}
}

// Load fetches the window list for (storeID, date). If the key differs from
// the current one, the previous list and selection are dropped before the
// fetch. A response that arrives after another Load changed the key again
// is discarded rather than applied.
func (p *WindowPlanner) Load(ctx context.Context, storeID, date string) error {
	p.mu.Lock()
	if storeID != p.storeID || date != p.date {
		p.storeID = storeID
		p.date = date
		p.windows = nil
		p.selected = ""
		p.gen++
	}
	gen := p.gen
	p.mu.Unlock()

	windows, err := p.client.ListDeliveryWindows(ctx, storeID, date)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		// Superseded by a newer key; drop the stale response silently.
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "list delivery windows")
	}
	p.windows = windows
	return nil
}

// Select marks a window as chosen. Only ids present in the current list are
// accepted.
func (p *WindowPlanner) Select(windowID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !windowChosen(windowID, p.windows) {
		return ErrUnknownWindow
	}
	p.selected = windowID
	return nil
}

// Windows returns a copy of the current window list.
func (p *WindowPlanner) Windows() []catalog.DeliveryWindow {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]catalog.DeliveryWindow, len(p.windows))
	copy(out, p.windows)
	return out
}

// Selected returns the chosen window id, or "" when none is chosen.
func (p *WindowPlanner) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Key returns the current (storeID, date) key.
func (p *WindowPlanner) Key() (storeID, date string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.storeID, p.date
}

// Reset drops the key, list, and selection, and invalidates any in-flight
// fetch. Used on session teardown.
func (p *WindowPlanner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.storeID = ""
	p.date = ""
	p.windows = nil
	p.selected = ""
	p.gen++
}
