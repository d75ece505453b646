package engine

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

func TestManualSchedulerUnregisterOnce(t *testing.T) {
	s := NewManualScheduler()
	var a, b int
	ra := s.Register(func(time.Time) { a++ })
	s.Register(func(time.Time) { b++ })

	assert.Equal(t, 2, s.Advance(epoch))
	ra.Unregister()
	ra.Unregister()
	assert.Equal(t, 1, s.Active())
	assert.Equal(t, 1, s.Advance(epoch))
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestManualSchedulerUnregisterDuringAdvance(t *testing.T) {
	s := NewManualScheduler()
	var second Registration
	calls := 0
	s.Register(func(time.Time) { second.Unregister() })
	second = s.Register(func(time.Time) { calls++ })

	assert.Equal(t, 1, s.Advance(epoch))
	assert.Zero(t, calls)
}

func TestDriverRunsTicksAndEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDriver(time.Millisecond, log.New(io.Discard))
	var ticks atomic.Int64
	reg := d.Register(func(time.Time) { ticks.Add(1) })

	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	ran := false
	require.NoError(t, d.Do(ctx, func() error { ran = true; return nil }))
	assert.True(t, ran)

	want := errors.New(errors.ErrCodeInvalidInput, "bad")
	assert.Equal(t, want, d.Do(ctx, func() error { return want }))

	reg.Unregister()
	n := ticks.Load()
	require.NoError(t, d.Do(ctx, func() error { return nil }))
	time.Sleep(5 * time.Millisecond)
	assert.LessOrEqual(t, ticks.Load(), n+1)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	<-d.Done()

	err := d.Do(context.Background(), func() error { return nil })
	assert.True(t, errors.Is(err, errors.ErrCodeStopped))
}

func TestDriverDrivesEngine(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDriver(time.Millisecond, log.New(io.Discard))
	e := New(WithScheduler(d))
	go d.Run(ctx)

	require.NoError(t, d.Do(ctx, func() error { return e.Load(ctx, pair()) }))
	require.Eventually(t, func() bool {
		var ticks int
		_ = d.Do(ctx, func() error { ticks = e.Simulation().Ticks(); return nil })
		return ticks > 5
	}, time.Second, time.Millisecond)

	require.NoError(t, d.Do(ctx, func() error { e.Stop(); return nil }))
	assert.True(t, e.Stopped())
}
