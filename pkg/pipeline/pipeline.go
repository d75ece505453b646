// Package pipeline runs a snapshot through fetch, layout and render without
// a live engine loop.
//
// Stages:
//
//  1. Fetch reads a snapshot from a file or the site backend.
//  2. Layout ticks a headless engine until it settles or MaxTicks is hit.
//  3. Render fits the settled scene into the canvas and writes each format.
//
// [Runner] puts a cache in front of stages 2 and 3. Layout keys cover the
// snapshot and physics parameters; artifact keys cover the snapshot, the
// layout and the render parameters.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "graph.json",
//	    Formats: []string{pipeline.FormatSVG, pipeline.FormatDOT},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("graph.svg", res.Artifacts[pipeline.FormatSVG], 0o644)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegraph/pkg/cache"
	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxTicks bounds a headless layout run. The default cooling
	// schedule settles after about 300 ticks; dragging is not possible here,
	// so the bound only matters for custom alpha parameters.
	DefaultMaxTicks = 1000

	// DefaultPadding is the margin, in view units, kept around a rendered
	// layout.
	DefaultPadding = 40.0
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"      // native SVG sink
	FormatDOT      = "dot"      // Graphviz source with pinned positions
	FormatGraphviz = "graphviz" // SVG rendered by Graphviz neato
	FormatJSON     = "json"     // projected frame
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatDOT:      true,
	FormatGraphviz: true,
	FormatJSON:     true,
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	if format == FormatGraphviz {
		return "gv.svg"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one run. The zero value is usable once Source is set.
type Options struct {
	// Fetch options
	Source  string `json:"source,omitempty"` // file path or http(s) URL
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	Engine   engine.Options `json:"-"`
	MaxTicks int            `json:"max_ticks,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Theme    string   `json:"theme,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`
	Padding  float64  `json:"padding,omitempty"`
	Title    string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is everything one Execute produced.
type Result struct {
	Snapshot     graph.Snapshot
	SnapshotHash string // hex SHA-256 of the canonical snapshot JSON
	Layout       graph.Layout
	Artifacts    map[string][]byte // by format
	Stats        Stats
	CacheInfo    CacheInfo
}

// Stats are sizes and per-stage wall times.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from the cache. RenderHit is
// set only when every format was.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat rejects unknown output formats.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, dot, graphviz, json)", format)
	}
	return nil
}

// ValidateFormats applies ValidateFormat to each entry.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source is required")
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Engine == (engine.Options{}) {
		o.Engine = engine.DefaultOptions()
	}
	if o.MaxTicks <= 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = string(render.ThemeLight)
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	theme, err := render.ParseTheme(o.Theme)
	if err != nil {
		return err
	}
	o.Theme = string(theme)
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "padding must not be negative, got %g", o.Padding)
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	e := o.Engine
	return cache.LayoutKeyOpts{
		Width:    e.Width,
		Height:   e.Height,
		Seed:     e.Seed,
		MaxTicks: o.MaxTicks,
		Physics: fmt.Sprintf("%g,%g,%g,%g,%g,%g,%g,%g,%g",
			e.LinkDistance, e.Charge, e.Theta, e.AxisStrength, e.XTargetFactor,
			e.YTarget, e.AlphaMin, e.AlphaDecay, e.VelocityDecay),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		Theme:   o.Theme,
		Labels:  !o.NoLabels,
		Padding: o.Padding,
		Title:   o.Title,
	}
}
