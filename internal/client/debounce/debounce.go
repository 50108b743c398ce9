// Package debounce coalesces bursts of triggers into one call after a
// quiet window.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn once the quiet window has elapsed after the last
// Trigger. A new Trigger replaces a pending one. fn runs on its own
// goroutine and must read whatever state it needs when it is called.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	running bool
	stopped bool
}

// New returns a Debouncer. A non-positive delay defaults to 100ms.
func New(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn, restarting the quiet window.
func (d *Debouncer) Trigger() {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.onTimer)
		return
	}
	d.timer.Reset(d.delay)
}

// Cancel drops a scheduled call without stopping the debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Stop cancels any scheduled call. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) onTimer() {
	d.mu.Lock()
	if d.running {
		// Pick up the pending trigger after the current run.
		d.timer.Reset(d.delay)
		d.mu.Unlock()
		return
	}
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.running = true
	d.mu.Unlock()

	d.fn()

	d.mu.Lock()
	d.running = false
	if d.pending && !d.stopped {
		d.timer.Reset(d.delay)
	}
	d.mu.Unlock()
}
