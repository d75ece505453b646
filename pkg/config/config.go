// Package config loads sitegraph settings from TOML or YAML.
//
// Every field has a default (see [Default]); a file only needs the values it
// changes:
//
//	[physics]
//	charge = -900
//
//	[viewport]
//	max_scale = 8
//
// The same document in YAML is accepted when the file ends in .yaml or .yml.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/interact"
	"github.com/matzehuels/sitegraph/pkg/render"
	"github.com/matzehuels/sitegraph/pkg/source"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

// Config is the full settings document.
type Config struct {
	Physics     Physics     `toml:"physics" yaml:"physics"`
	Viewport    Viewport    `toml:"viewport" yaml:"viewport"`
	Interaction Interaction `toml:"interaction" yaml:"interaction"`
	Render      Render      `toml:"render" yaml:"render"`
	Source      Source      `toml:"source" yaml:"source"`
	Server      Server      `toml:"server" yaml:"server"`
}

// Physics holds canvas and simulation parameters.
type Physics struct {
	Width         float64 `toml:"width" yaml:"width" validate:"gt=0"`
	Height        float64 `toml:"height" yaml:"height" validate:"gt=0"`
	LinkDistance  float64 `toml:"link_distance" yaml:"link_distance" validate:"gt=0"`
	Charge        float64 `toml:"charge" yaml:"charge"`
	Theta         float64 `toml:"theta" yaml:"theta" validate:"gt=0"`
	AxisStrength  float64 `toml:"axis_strength" yaml:"axis_strength" validate:"gte=0,lte=1"`
	XTargetFactor float64 `toml:"x_target_factor" yaml:"x_target_factor"`
	YTarget       float64 `toml:"y_target" yaml:"y_target"`
	AlphaMin      float64 `toml:"alpha_min" yaml:"alpha_min" validate:"gt=0,lt=1"`
	AlphaDecay    float64 `toml:"alpha_decay" yaml:"alpha_decay" validate:"gt=0,lt=1"`
	VelocityDecay float64 `toml:"velocity_decay" yaml:"velocity_decay" validate:"gt=0,lt=1"`
	Seed          uint64  `toml:"seed" yaml:"seed"`
	// MaxTicks bounds headless runs.
	MaxTicks int `toml:"max_ticks" yaml:"max_ticks" validate:"gt=0"`
}

// Viewport holds zoom parameters.
type Viewport struct {
	MinScale       float64       `toml:"min_scale" yaml:"min_scale" validate:"gt=0"`
	MaxScale       float64       `toml:"max_scale" yaml:"max_scale" validate:"gtfield=MinScale"`
	Debounce       time.Duration `toml:"debounce" yaml:"debounce" validate:"gte=0"`
	ZoomNudgeAlpha float64       `toml:"zoom_nudge_alpha" yaml:"zoom_nudge_alpha" validate:"gte=0,lte=1"`
	FitPadding     float64       `toml:"fit_padding" yaml:"fit_padding" validate:"gte=0"`
}

// Interaction holds gesture parameters.
type Interaction struct {
	ClickThreshold   float64       `toml:"click_threshold" yaml:"click_threshold" validate:"gte=0"`
	ClickMaxDuration time.Duration `toml:"click_max_duration" yaml:"click_max_duration" validate:"gte=0"`
	DragAlphaTarget  float64       `toml:"drag_alpha_target" yaml:"drag_alpha_target" validate:"gt=0,lte=1"`
}

// Render holds the theme and fixed visual style.
type Render struct {
	Theme string       `toml:"theme" yaml:"theme" validate:"oneof=light dark"`
	Style render.Style `toml:"style" yaml:"style"`
}

// Source selects where snapshots come from and how fetches are cached.
type Source struct {
	URL      string        `toml:"url" yaml:"url"`
	Cache    string        `toml:"cache" yaml:"cache" validate:"oneof=none file redis"`
	CacheDir string        `toml:"cache_dir" yaml:"cache_dir"`
	CacheTTL time.Duration `toml:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
	Retries  int           `toml:"retries" yaml:"retries" validate:"gte=1"`
	Redis    Redis         `toml:"redis" yaml:"redis"`
}

// Redis addresses the shared cache.
type Redis struct {
	Addr     string `toml:"addr" yaml:"addr" validate:"required_if=Enabled true"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db" validate:"gte=0"`
	Prefix   string `toml:"prefix" yaml:"prefix"`
	Enabled  bool   `toml:"-" yaml:"-"`
}

// Server holds the serve command's settings.
type Server struct {
	Addr          string        `toml:"addr" yaml:"addr" validate:"required"`
	TickInterval  time.Duration `toml:"tick_interval" yaml:"tick_interval" validate:"gt=0"`
	WatchDebounce time.Duration `toml:"watch_debounce" yaml:"watch_debounce" validate:"gte=0"`
	// PollInterval re-fetches an HTTP source; zero disables polling.
	PollInterval time.Duration `toml:"poll_interval" yaml:"poll_interval" validate:"gte=0"`
}

// Default returns the reference settings.
func Default() Config {
	o := engine.DefaultOptions()
	return Config{
		Physics: Physics{
			Width:         o.Width,
			Height:        o.Height,
			LinkDistance:  o.LinkDistance,
			Charge:        o.Charge,
			Theta:         o.Theta,
			AxisStrength:  o.AxisStrength,
			XTargetFactor: o.XTargetFactor,
			YTarget:       o.YTarget,
			AlphaMin:      o.AlphaMin,
			AlphaDecay:    o.AlphaDecay,
			VelocityDecay: o.VelocityDecay,
			Seed:          o.Seed,
			MaxTicks:      1000,
		},
		Viewport: Viewport{
			MinScale:       viewport.DefaultExtent.Min,
			MaxScale:       viewport.DefaultExtent.Max,
			Debounce:       viewport.DefaultDebounceWindow,
			ZoomNudgeAlpha: engine.DefaultZoomNudgeAlpha,
			FitPadding:     40,
		},
		Interaction: Interaction{
			ClickThreshold:   interact.DefaultClickPolicy.Threshold,
			ClickMaxDuration: interact.DefaultClickPolicy.MaxDuration,
			DragAlphaTarget:  interact.DefaultDragAlphaTarget,
		},
		Render: Render{
			Theme: string(render.ThemeLight),
			Style: render.DefaultStyle,
		},
		Source: Source{
			URL:      source.DefaultURL,
			Cache:    "file",
			CacheTTL: 10 * time.Minute,
			Retries:  3,
			Redis:    Redis{Addr: "localhost:6379", Prefix: "sitegraph:"},
		},
		Server: Server{
			Addr:          ":9779",
			TickInterval:  engine.DefaultTickInterval,
			WatchDebounce: source.DefaultWatchDebounce,
		},
	}
}

// Load reads path over the defaults and validates the result. The format
// follows the extension: .yaml/.yml is YAML, anything else TOML.
func Load(path string) (Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Decode(data, FormatOf(path))
}

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf infers the format from a file name.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Decode parses data over the defaults and validates the result.
func Decode(data []byte, format Format) (Config, error) {
	c := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !stderrors.Is(err, io.EOF) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml")
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &c)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
		}
	default:
		return Config{}, errors.New(errors.ErrCodeUnsupported, "config format %q", format)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	c.Source.Redis.Enabled = c.Source.Cache == "redis"
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	if c.Physics.Charge >= 0 {
		// A non-negative charge collapses the layout onto the axis targets.
		return errors.New(errors.ErrCodeInvalidConfig, "physics.charge must be negative, got %g", c.Physics.Charge)
	}
	if c.Viewport.Debounce > time.Second {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.debounce %s exceeds 1s", c.Viewport.Debounce)
	}
	return nil
}

// EngineOptions maps the config onto engine parameters.
func (c Config) EngineOptions() engine.Options {
	p := c.Physics
	return engine.Options{
		Width:           p.Width,
		Height:          p.Height,
		LinkDistance:    p.LinkDistance,
		Charge:          p.Charge,
		Theta:           p.Theta,
		AxisStrength:    p.AxisStrength,
		XTargetFactor:   p.XTargetFactor,
		YTarget:         p.YTarget,
		AlphaMin:        p.AlphaMin,
		AlphaDecay:      p.AlphaDecay,
		VelocityDecay:   p.VelocityDecay,
		Seed:            p.Seed,
		DragAlphaTarget: c.Interaction.DragAlphaTarget,
		ZoomNudgeAlpha:  c.Viewport.ZoomNudgeAlpha,
		Extent:          viewport.Extent{Min: c.Viewport.MinScale, Max: c.Viewport.MaxScale},
		DebounceWindow:  c.Viewport.Debounce,
		Click: interact.ClickPolicy{
			Threshold:   c.Interaction.ClickThreshold,
			MaxDuration: c.Interaction.ClickMaxDuration,
		},
		Style: c.Render.Style,
		Theme: render.Theme(c.Render.Theme),
	}
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
