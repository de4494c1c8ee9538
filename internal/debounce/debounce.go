// Package debounce delays a function call and collapses bursts: only the
// last call scheduled within the delay window runs.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs at most one pending function, the most recently
// scheduled one, after a fixed delay. Safe for concurrent use.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a Debouncer with the given delay.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Perform schedules fn to run after the delay, replacing any previously
// scheduled function that has not fired yet.
func (d *Debouncer) Perform(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending function.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
