package viewport

import "time"

// DefaultDebounceWindow is the quiet period before a zoom is released.
const DefaultDebounceWindow = time.Millisecond

// Debouncer coalesces a burst of values into the last one. It has no timer
// of its own: the owner polls Due from its tick loop, which keeps every
// state change on the owner's goroutine.
type Debouncer[T any] struct {
	window  time.Duration
	pending bool
	value   T
	last    time.Time

	dropped int
}

// NewDebouncer creates a debouncer with the given quiet window. A
// non-positive window releases on the next poll.
func NewDebouncer[T any](window time.Duration) *Debouncer[T] {
	return &Debouncer[T]{window: window}
}

// Offer buffers v, superseding any value not yet released.
func (d *Debouncer[T]) Offer(v T, now time.Time) {
	if d.pending {
		d.dropped++
	}
	d.value = v
	d.pending = true
	d.last = now
}

// Due releases the buffered value once the window has elapsed since the
// last Offer.
func (d *Debouncer[T]) Due(now time.Time) (T, bool) {
	var zero T
	if !d.pending || now.Sub(d.last) < d.window {
		return zero, false
	}
	v := d.value
	d.pending = false
	d.value = zero
	return v, true
}

// Flush releases the buffered value immediately, if any.
func (d *Debouncer[T]) Flush() (T, bool) {
	var zero T
	if !d.pending {
		return zero, false
	}
	v := d.value
	d.pending = false
	d.value = zero
	return v, true
}

// Pending returns the buffered value without releasing it.
func (d *Debouncer[T]) Pending() (T, bool) { return d.value, d.pending }

// Reset discards any buffered value.
func (d *Debouncer[T]) Reset() {
	var zero T
	d.pending = false
	d.value = zero
}

// Dropped returns how many offered values were superseded before release.
func (d *Debouncer[T]) Dropped() int { return d.dropped }

// Window returns the quiet period.
func (d *Debouncer[T]) Window() time.Duration { return d.window }
