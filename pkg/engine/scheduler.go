package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// TickFunc is a per-frame callback.
type TickFunc func(now time.Time)

// Scheduler invokes registered callbacks once per frame.
type Scheduler interface {
	Register(fn TickFunc) Registration
}

// Registration is a live tick subscription.
type Registration interface {
	// Unregister stops further callbacks. Only the first call has effect.
	Unregister()
}

// registration is shared by both schedulers: the active flag is checked
// before every callback, and removal runs exactly once.
type registration struct {
	id     uint64
	fn     TickFunc
	active atomic.Bool
	once   sync.Once
	remove func(id uint64)
}

func newRegistration(id uint64, fn TickFunc, remove func(uint64)) *registration {
	r := &registration{id: id, fn: fn, remove: remove}
	r.active.Store(true)
	return r
}

func (r *registration) Unregister() {
	r.once.Do(func() {
		r.active.Store(false)
		r.remove(r.id)
	})
}

func (r *registration) call(now time.Time) bool {
	if !r.active.Load() {
		return false
	}
	r.fn(now)
	return true
}

// ManualScheduler runs callbacks only when Advance is called. It is meant
// for tests and headless commands.
type ManualScheduler struct {
	mu   sync.Mutex
	next uint64
	regs []*registration
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Register adds fn to the callback list.
func (m *ManualScheduler) Register(fn TickFunc) Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	r := newRegistration(m.next, fn, m.remove)
	m.regs = append(m.regs, r)
	return r
}

func (m *ManualScheduler) remove(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.regs {
		if r.id == id {
			m.regs = append(m.regs[:i], m.regs[i+1:]...)
			return
		}
	}
}

// Advance runs every active callback once with now and returns how many ran.
func (m *ManualScheduler) Advance(now time.Time) int {
	m.mu.Lock()
	regs := append([]*registration(nil), m.regs...)
	m.mu.Unlock()

	n := 0
	for _, r := range regs {
		if r.call(now) {
			n++
		}
	}
	return n
}

// Active returns the number of live registrations.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regs)
}
