package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/force"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/interact"
	"github.com/matzehuels/sitegraph/pkg/observability"
	"github.com/matzehuels/sitegraph/pkg/render"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

// Force names registered on every simulation.
const (
	ForceLink   = "link"
	ForceCharge = "charge"
	ForceX      = "x"
	ForceY      = "y"
)

// Engine is the interactive layout of one graph snapshot at a time.
type Engine struct {
	opts   Options
	logger *log.Logger
	hooks  observability.EngineHooks
	sched  Scheduler

	graph *graph.Loaded
	sim   *force.Simulation
	scene *render.Scene
	drags *interact.Drags
	reg   Registration

	view      *viewport.Viewport
	zoom      *viewport.Debouncer[viewport.Transform]
	selection interact.Selection
	gesture   *interact.Gesture
	grabDX    float64
	grabDY    float64
	hover     string
	theme     render.Theme

	version uint64
	stopped bool
}

// New creates an engine with no graph loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		opts:   DefaultOptions(),
		logger: log.Default(),
		hooks:  observability.Engine(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = NewManualScheduler()
	}
	e.view = viewport.New(e.opts.Extent)
	e.zoom = viewport.NewDebouncer[viewport.Transform](e.opts.DebounceWindow)
	e.theme = e.opts.Theme
	e.selection.OnChange(func(n *graph.Node) {
		id := ""
		if n != nil {
			id = n.ID
		}
		e.logger.Debug("selection changed", "node", id)
		e.hooks.OnSelect(id)
		e.version++
	})
	return e
}

// Options returns the effective engine parameters.
func (e *Engine) Options() Options { return e.opts }

// Load validates s and, if valid, replaces the current graph with it. On
// failure the current graph is untouched and the error is returned.
func (e *Engine) Load(ctx context.Context, s graph.Snapshot) (err error) {
	start := time.Now()
	defer func() {
		e.hooks.OnLoad(ctx, len(s.Nodes), len(s.Links), time.Since(start), err)
	}()

	if e.stopped {
		return errors.New(errors.ErrCodeStopped, "engine stopped")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	loaded, err := graph.Load(s)
	if err != nil {
		e.logger.Warn("snapshot rejected", "err", err)
		return err
	}
	sim, err := e.newSimulation(loaded)
	if err != nil {
		return err
	}
	scene := render.NewScene(loaded, e.theme, e.opts.Style)
	scene.Sync(sim.Bodies())

	e.teardown()
	e.graph = loaded
	e.sim = sim
	e.scene = scene
	e.drags = interact.NewDrags(sim, e.opts.DragAlphaTarget)
	e.reg = e.sched.Register(func(now time.Time) { e.Tick(now) })
	e.version++

	e.logger.Debug("snapshot loaded", "nodes", len(loaded.Nodes), "links", len(loaded.Links))
	return nil
}

func (e *Engine) newSimulation(l *graph.Loaded) (*force.Simulation, error) {
	o := e.opts
	sim := force.New(l.IDs(),
		force.WithAlphaMin(o.AlphaMin),
		force.WithAlphaDecay(o.AlphaDecay),
		force.WithVelocityDecay(o.VelocityDecay),
		force.WithSeed(o.Seed),
	)

	specs := make([]force.LinkSpec, len(l.Links))
	for i, lk := range l.Links {
		specs[i] = force.LinkSpec{Source: lk.Source, Target: lk.Target}
	}
	links := force.NewLinkForce(specs)
	links.Distance = o.LinkDistance

	charge := force.NewManyBody()
	charge.Strength = o.Charge
	charge.Theta = o.Theta

	fx := force.NewXForce(o.Width * o.XTargetFactor)
	fx.Strength = o.AxisStrength
	fy := force.NewYForce(o.YTarget)
	fy.Strength = o.AxisStrength

	for _, f := range []struct {
		name  string
		force force.Force
	}{
		{ForceLink, links},
		{ForceCharge, charge},
		{ForceX, fx},
		{ForceY, fy},
	} {
		if err := sim.AddForce(f.name, f.force); err != nil {
			return nil, err
		}
	}
	if err := sim.Start(); err != nil {
		return nil, err
	}
	return sim, nil
}

// teardown releases everything tied to the current graph.
func (e *Engine) teardown() {
	if e.reg != nil {
		e.reg.Unregister()
		e.reg = nil
	}
	if e.sim != nil {
		e.sim.UnpinAll()
		e.sim.Stop()
	}
	if e.drags != nil {
		e.drags.Reset()
	}
	e.gesture = nil
	e.hover = ""
	e.zoom.Reset()
	e.view.Reset()
	e.selection.Clear()
}

// Tick advances one frame: it releases a debounced zoom, steps the
// simulation if it is running and syncs the scene. It reports whether the
// frame changed.
func (e *Engine) Tick(now time.Time) bool {
	if e.stopped || e.sim == nil {
		return false
	}
	changed := false
	if t, ok := e.zoom.Due(now); ok {
		e.applyZoom(t)
		changed = true
	}

	before := e.sim.State()
	if e.sim.Step() {
		e.scene.Sync(e.sim.Bodies())
		e.hooks.OnTick(e.sim.Alpha(), e.sim.State().String())
		changed = true
	}
	if before == force.StateRunning && e.sim.State() == force.StateSettled {
		e.logger.Debug("layout settled", "ticks", e.sim.Ticks())
		e.hooks.OnSettled(e.sim.Ticks())
	}
	if changed {
		e.version++
	}
	return changed
}

// Settle steps the simulation until it settles or maxTicks steps have run,
// without a scheduler. A pending zoom is applied first. It returns the
// number of steps taken.
func (e *Engine) Settle(maxTicks int) int {
	if e.stopped || e.sim == nil {
		return 0
	}
	if t, ok := e.zoom.Flush(); ok {
		t = e.view.Set(t)
		e.hooks.OnZoom(t.K)
	}
	n := 0
	for n < maxTicks && e.sim.Step() {
		n++
	}
	e.scene.Sync(e.sim.Bodies())
	if n > 0 {
		e.version++
	}
	return n
}

func (e *Engine) applyZoom(t viewport.Transform) {
	t = e.view.Set(t)
	e.hooks.OnZoom(t.K)
	e.logger.Debug("zoom applied", "k", t.K, "coalesced", e.zoom.Dropped())
	if e.sim != nil && e.opts.ZoomNudgeAlpha > 0 {
		e.sim.SetAlpha(e.opts.ZoomNudgeAlpha)
		e.sim.Restart()
	}
}

// Stop halts the simulation and releases the tick registration. It is
// terminal; calling it again has no effect.
func (e *Engine) Stop() {
	if e.stopped {
		return
	}
	if e.reg != nil {
		e.reg.Unregister()
		e.reg = nil
	}
	if e.sim != nil {
		e.sim.Stop()
	}
	if e.drags != nil {
		e.drags.Reset()
	}
	e.gesture = nil
	e.stopped = true
	e.logger.Debug("engine stopped")
}

// Stopped reports whether Stop has been called.
func (e *Engine) Stopped() bool { return e.stopped }

// State returns the simulation state, or StateUninitialized when no graph
// is loaded.
func (e *Engine) State() force.State {
	if e.sim == nil {
		if e.stopped {
			return force.StateStopped
		}
		return force.StateUninitialized
	}
	return e.sim.State()
}

// Version increases whenever the visible frame may have changed.
func (e *Engine) Version() uint64 { return e.version }

// Graph returns the loaded graph, or nil.
func (e *Engine) Graph() *graph.Loaded { return e.graph }

// Snapshot returns a copy of the loaded snapshot.
func (e *Engine) Snapshot() (graph.Snapshot, bool) {
	if e.graph == nil {
		return graph.Snapshot{}, false
	}
	return e.graph.Snapshot(), true
}

// Simulation returns the current simulation, or nil.
func (e *Engine) Simulation() *force.Simulation { return e.sim }

// Selection returns the selected node record, or nil.
func (e *Engine) Selection() *graph.Node { return e.selection.Current() }

// Select selects the node with id. An empty id clears the selection.
func (e *Engine) Select(id string) error {
	if id == "" {
		e.selection.Clear()
		return nil
	}
	n := e.node(id)
	if n == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "no node %q", id)
	}
	e.selection.Select(n)
	return nil
}

// ClearSelection drops the selection.
func (e *Engine) ClearSelection() { e.selection.Clear() }

// OnSelect registers an additional selection listener.
func (e *Engine) OnSelect(fn func(*graph.Node)) { e.selection.OnChange(fn) }

// Theme returns the active theme.
func (e *Engine) Theme() render.Theme { return e.theme }

// SetTheme restyles colors for theme. Positions are not touched.
func (e *Engine) SetTheme(theme render.Theme) error {
	if _, err := render.ParseTheme(string(theme)); err != nil {
		return err
	}
	if theme == e.theme {
		return nil
	}
	e.theme = theme
	if e.scene != nil {
		e.scene.Restyle(theme)
	}
	e.hooks.OnThemeChange(string(theme))
	e.version++
	return nil
}

// Transform returns the applied view transform.
func (e *Engine) Transform() viewport.Transform { return e.view.Transform() }

// Frame projects the scene through the applied view transform.
func (e *Engine) Frame() render.Frame {
	if e.scene == nil {
		return render.Frame{
			Width: e.opts.Width, Height: e.opts.Height,
			Theme: e.theme, Transform: e.view.Transform(),
			Markers: []render.Marker{}, Lines: []render.Line{}, Labels: []render.Label{},
		}
	}
	selected := ""
	if n := e.selection.Current(); n != nil {
		selected = n.ID
	}
	e.scene.Mark(selected, e.hover)
	f := e.scene.Project(e.view.Transform(), e.opts.Width, e.opts.Height)
	f.Tick = e.sim.Ticks()
	f.Alpha = e.sim.Alpha()
	return f
}

// Layout returns the current world positions.
func (e *Engine) Layout() graph.Layout {
	l := graph.Layout{Width: e.opts.Width, Height: e.opts.Height}
	if e.sim == nil {
		l.Positions = []graph.Position{}
		return l
	}
	l.Ticks = e.sim.Ticks()
	l.Alpha = e.sim.Alpha()
	l.Settled = e.sim.State() == force.StateSettled
	bodies := e.sim.Bodies()
	l.Positions = make([]graph.Position, len(bodies))
	for i, b := range bodies {
		l.Positions[i] = graph.Position{ID: b.ID, X: b.X, Y: b.Y, Pinned: e.sim.Pinned(b.ID)}
	}
	return l
}

// FitView sets the transform so every node is visible with padding view
// units of margin.
func (e *Engine) FitView(padding float64) viewport.Transform {
	if e.scene == nil {
		return e.view.Transform()
	}
	e.zoom.Reset()
	t := viewport.Fit(e.scene.Bounds(), e.opts.Width, e.opts.Height, padding, e.view.Extent())
	t = e.view.Set(t)
	e.hooks.OnZoom(t.K)
	e.version++
	return t
}

func (e *Engine) node(id string) *graph.Node {
	if e.graph == nil {
		return nil
	}
	return e.graph.Node(id)
}
