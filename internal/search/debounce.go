package search

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending call. Triggering again cancels the
// pending call and restarts the delay, so only the last trigger of a burst runs.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending *slot
}

type slot struct {
	timer *time.Timer
	dead  bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the delay, superseding any pending call.
// fn runs with the debouncer locked and must not call back into it.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()

	s := &slot{}
	d.pending = s
	s.timer = time.AfterFunc(d.delay, func() { d.fire(s, fn) })
}

// Cancel drops the pending call, if any. It reports whether one was dropped.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) cancelLocked() bool {
	if d.pending == nil {
		return false
	}
	// Stop may lose the race with a timer that already fired; marking the slot
	// dead makes that late callback a no-op.
	if d.pending.timer != nil {
		d.pending.timer.Stop()
	}
	d.pending.dead = true
	d.pending = nil
	return true
}

func (d *Debouncer) fire(s *slot, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.dead || d.pending != s {
		return
	}
	d.pending = nil
	fn()
}
