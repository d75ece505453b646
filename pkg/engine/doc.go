// Package engine couples the force simulation, the viewport, the interaction
// controller and the render scene into one single-threaded state machine.
//
// # Threading
//
// An [Engine] is not safe for concurrent use. Every entry point (Load, Tick,
// the pointer handlers, SetTheme, Frame, Stop) must run on one goroutine.
// [Driver] provides that goroutine: it invokes registered tick callbacks on a
// fixed cadence and runs posted events in between, so ticks and input never
// interleave.
//
//	d := engine.NewDriver(16*time.Millisecond, logger)
//	e := engine.New(engine.WithScheduler(d), engine.WithLogger(logger))
//	go d.Run(ctx)
//	err := d.Do(ctx, func() error { return e.Load(ctx, snap) })
//
// Tests and headless commands use [ManualScheduler] instead and advance
// time explicitly.
//
// # Lifecycle
//
// Load validates a snapshot and builds a complete new simulation and scene
// before touching the current ones. Only on success does it stop the old
// simulation, release its tick registration, clear pins, drags and the
// selection, and register the new tick callback. A failed load leaves the
// previous graph (or the empty state) in place.
//
// Stop is terminal and idempotent.
package engine
