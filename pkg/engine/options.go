package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegraph/pkg/force"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/interact"
	"github.com/matzehuels/sitegraph/pkg/render"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

// Default canvas and physics parameters.
const (
	DefaultWidth          = 1400
	DefaultHeight         = 700
	DefaultXTargetFactor  = -0.2
	DefaultZoomNudgeAlpha = 1.0
	DefaultTickInterval   = 16 * time.Millisecond
)

// Options holds the tunable parameters of an engine. Zero fields take their
// defaults.
type Options struct {
	Width  float64
	Height float64

	LinkDistance  float64
	Charge        float64
	Theta         float64
	AxisStrength  float64
	XTargetFactor float64
	YTarget       float64
	AlphaMin      float64
	AlphaDecay    float64
	VelocityDecay float64
	Seed          uint64

	DragAlphaTarget float64
	ZoomNudgeAlpha  float64
	Extent          viewport.Extent
	DebounceWindow  time.Duration
	Click           interact.ClickPolicy

	Style render.Style
	Theme render.Theme
}

// DefaultOptions returns the reference parameters.
func DefaultOptions() Options {
	return Options{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		LinkDistance:    force.DefaultLinkDistance,
		Charge:          force.DefaultCharge,
		Theta:           force.DefaultTheta,
		AxisStrength:    force.DefaultAxisStrength,
		XTargetFactor:   DefaultXTargetFactor,
		AlphaMin:        force.DefaultAlphaMin,
		AlphaDecay:      force.DefaultAlphaDecay,
		VelocityDecay:   force.DefaultVelocityDecay,
		Seed:            force.DefaultSeed,
		DragAlphaTarget: interact.DefaultDragAlphaTarget,
		ZoomNudgeAlpha:  DefaultZoomNudgeAlpha,
		Extent:          viewport.DefaultExtent,
		DebounceWindow:  viewport.DefaultDebounceWindow,
		Click:           interact.DefaultClickPolicy,
		Style:           render.DefaultStyle,
		Theme:           render.ThemeLight,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width != 0 {
		d.Width = o.Width
	}
	if o.Height != 0 {
		d.Height = o.Height
	}
	if o.LinkDistance != 0 {
		d.LinkDistance = o.LinkDistance
	}
	if o.Charge != 0 {
		d.Charge = o.Charge
	}
	if o.Theta != 0 {
		d.Theta = o.Theta
	}
	if o.AxisStrength != 0 {
		d.AxisStrength = o.AxisStrength
	}
	if o.XTargetFactor != 0 {
		d.XTargetFactor = o.XTargetFactor
	}
	d.YTarget = o.YTarget
	if o.AlphaMin != 0 {
		d.AlphaMin = o.AlphaMin
	}
	if o.AlphaDecay != 0 {
		d.AlphaDecay = o.AlphaDecay
	}
	if o.VelocityDecay != 0 {
		d.VelocityDecay = o.VelocityDecay
	}
	if o.Seed != 0 {
		d.Seed = o.Seed
	}
	if o.DragAlphaTarget != 0 {
		d.DragAlphaTarget = o.DragAlphaTarget
	}
	if o.ZoomNudgeAlpha != 0 {
		d.ZoomNudgeAlpha = o.ZoomNudgeAlpha
	}
	if o.Extent != (viewport.Extent{}) {
		d.Extent = o.Extent
	}
	if o.DebounceWindow != 0 {
		d.DebounceWindow = o.DebounceWindow
	}
	if o.Click != (interact.ClickPolicy{}) {
		d.Click = o.Click
	}
	if o.Style != (render.Style{}) {
		d.Style = o.Style
	}
	if o.Theme != "" {
		d.Theme = o.Theme
	}
	return d
}

// Option configures an Engine.
type Option func(*Engine)

// WithOptions sets the engine parameters.
func WithOptions(o Options) Option {
	return func(e *Engine) { e.opts = o.withDefaults() }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScheduler sets the tick scheduler. The default is a ManualScheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sched = s
		}
	}
}

// WithSelectionListener registers fn to receive the full selected node
// record on every selection change, or nil when the selection clears.
func WithSelectionListener(fn func(*graph.Node)) Option {
	return func(e *Engine) { e.selection.OnChange(fn) }
}
