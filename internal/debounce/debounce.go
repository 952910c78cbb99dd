// Package debounce delays a rapidly changing value until it has been stable
// for a quiet window.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is used when a non-positive delay is given.
const DefaultDelay = 500 * time.Millisecond

// Debouncer emits the last value passed to Trigger once no further Trigger
// call arrived for the configured delay. Intermediate values are dropped.
type Debouncer[T any] struct {
	delay time.Duration
	emit  func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	value   T
	stopped bool
}

// New creates a Debouncer that calls emit on its own goroutine.
func New[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, emit: emit}
}

// Delay returns the quiet window.
func (d *Debouncer[T]) Delay() time.Duration { return d.delay }

// Trigger records v and restarts the quiet window.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.value = v
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire emits only if no newer Trigger happened after the timer was armed.
// Timer.Stop cannot recall a callback that already started.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.emit(v)
}

// Pending reports whether a value is waiting for its window to close.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop drops any pending value and ignores later Trigger calls.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
