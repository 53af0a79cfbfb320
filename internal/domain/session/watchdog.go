package session

import (
	"sync"
	"time"
)

// Watchdog is the idle countdown protecting shared kiosk hardware: any user
// interaction resets it, and when it fires the whole session is torn down.
//
// Arm starts the countdown, Touch restarts it, Stop tears the timer down
// for good. A stopped watchdog never fires again; forgetting Stop would
// leak the timer across sessions, so the owning controller always pairs
// Arm with Stop.
type Watchdog struct {
	d    time.Duration
	fire func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewWatchdog creates an unarmed watchdog firing fire after d of idleness.
func NewWatchdog(d time.Duration, fire func()) *Watchdog {
	return &Watchdog{d: d, fire: fire}
}

// Arm starts (or restarts) the countdown.
func (w *Watchdog) Arm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.d, w.fire)
		return
	}
	w.timer.Reset(w.d)
}

// Touch restarts the countdown. Called for every raw interaction event;
// also re-arms after a fire, so the next customer's session gets a fresh
// countdown.
func (w *Watchdog) Touch() {
	w.Arm()
}

// Stop cancels the countdown permanently. Safe to call repeatedly.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
