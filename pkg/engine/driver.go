package engine

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

// Driver is a Scheduler backed by one goroutine. Run invokes every
// registered callback on each interval and executes posted events between
// frames, so all engine access happens on that goroutine.
type Driver struct {
	interval time.Duration
	logger   *log.Logger
	events   chan func()
	done     chan struct{}
	stopOnce sync.Once

	mu   sync.Mutex
	next uint64
	regs []*registration
}

// NewDriver creates a driver. A non-positive interval uses
// DefaultTickInterval; a nil logger uses log.Default().
func NewDriver(interval time.Duration, logger *log.Logger) *Driver {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		interval: interval,
		logger:   logger,
		events:   make(chan func(), 64),
		done:     make(chan struct{}),
	}
}

// Interval returns the frame interval.
func (d *Driver) Interval() time.Duration { return d.interval }

// Register adds fn to the per-frame callback list.
func (d *Driver) Register(fn TickFunc) Registration {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	r := newRegistration(d.next, fn, d.remove)
	d.regs = append(d.regs, r)
	return r
}

func (d *Driver) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, r := range d.regs {
		if r.id == id {
			d.regs = append(d.regs[:i], d.regs[i+1:]...)
			return
		}
	}
}

// Post queues fn to run on the driver goroutine. It blocks while the queue
// is full and fails once the driver has stopped or ctx is done.
func (d *Driver) Post(ctx context.Context, fn func()) error {
	select {
	case d.events <- fn:
		return nil
	case <-d.done:
		return errors.New(errors.ErrCodeStopped, "driver stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the driver goroutine and waits for its result.
func (d *Driver) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if err := d.Post(ctx, func() { result <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-d.done:
		// fn may still have run if it was dequeued before shutdown.
		select {
		case err := <-result:
			return err
		default:
			return errors.New(errors.ErrCodeStopped, "driver stopped")
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives frames and events until ctx is done. It returns ctx.Err().
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	defer d.stopOnce.Do(func() { close(d.done) })

	d.logger.Debug("driver started", "interval", d.interval)
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("driver stopped")
			return ctx.Err()
		case fn := <-d.events:
			fn()
		case now := <-ticker.C:
			d.frame(now)
		}
	}
}

// Done is closed when Run returns.
func (d *Driver) Done() <-chan struct{} { return d.done }

func (d *Driver) frame(now time.Time) {
	d.mu.Lock()
	regs := append([]*registration(nil), d.regs...)
	d.mu.Unlock()
	for _, r := range regs {
		r.call(now)
	}
}
