package watch

import (
	"sync"
	"time"

	"github.com/mrz1836/gitpulse/internal/clock"
)

// Debouncer runs fn once a quiet window of wait has passed since the last
// Trigger. It holds at most one timer; each Trigger replaces it.
type Debouncer struct {
	clock clock.Clock
	wait  time.Duration
	fn    func()

	mu    sync.Mutex
	timer clock.Timer
	// generation identifies the armed timer so a timer that fires after being
	// replaced does nothing.
	generation uint64
}

// NewDebouncer creates a debouncer calling fn.
func NewDebouncer(c clock.Clock, wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{clock: c, wait: wait, fn: fn}
}

// Trigger (re)starts the quiet window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.generation
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Cancel stops a pending window without running fn.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Flush cancels a pending window and runs fn now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.Cancel()
	d.fn()
}

// Pending reports whether a window is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.generation++
	d.mu.Unlock()

	d.fn()
}
