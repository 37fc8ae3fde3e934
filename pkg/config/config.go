// Package config loads the TOML settings shared by the CLI commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/archytas"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/color"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/engine"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
)

// ErrInvalidConfig is returned for settings that fail validation or do not
// decode.
var ErrInvalidConfig = errors.New("config: invalid")

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the whole settings file.
type Config struct {
	Log       Log             `toml:"log"`
	Model     archytas.Config `toml:"model"`
	Projector Projector       `toml:"projector"`
	Engine    Engine          `toml:"engine"`
	Render    Render          `toml:"render"`
	Theme     Theme           `toml:"theme"`
}

type Log struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
}

type Projector struct {
	// Eps is the degeneracy tolerance of the conic projector.
	Eps float64 `toml:"eps"`
}

type Engine struct {
	Timeout Duration `toml:"timeout"`
}

// Render holds page defaults for figures the CLI builds itself.
type Render struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	Margin      float64 `toml:"margin"`
	PointRadius float64 `toml:"point_radius"`
}

// Theme overrides palette colors by role. Dark colors not given are
// derived from the light palette.
type Theme struct {
	Dark  bool              `toml:"dark"`
	Light map[string]string `toml:"light,omitempty"`
	Night map[string]string `toml:"night,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:       Log{Level: "info"},
		Model:     archytas.DefaultConfig(),
		Projector: Projector{Eps: linalg.DefaultEps},
		Engine:    Engine{Timeout: Duration(engine.EvalTimeout)},
		Render:    Render{Width: 600, Height: 450, Margin: 10, PointRadius: 3},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("%w: model: %w", ErrInvalidConfig, err)
	}
	if !(c.Projector.Eps > 0 && c.Projector.Eps < 1e-2) {
		return fmt.Errorf("%w: projector eps %g must be in (0, 0.01)", ErrInvalidConfig, c.Projector.Eps)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("%w: engine timeout %s must be positive", ErrInvalidConfig, time.Duration(c.Engine.Timeout))
	}
	r := c.Render
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: render page %gx%g must be positive", ErrInvalidConfig, r.Width, r.Height)
	}
	if r.Margin < 0 || 2*r.Margin >= min(r.Width, r.Height) {
		return fmt.Errorf("%w: render margin %g leaves no room", ErrInvalidConfig, r.Margin)
	}
	if r.PointRadius < 0 {
		return fmt.Errorf("%w: point radius %g must not be negative", ErrInvalidConfig, r.PointRadius)
	}
	if _, err := c.Theme.Build(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps Log.Level onto slog.
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return l, nil
}

// Build returns a theme with the overrides applied and the dark flag set.
func (t Theme) Build() (*color.Theme, error) {
	light := color.LightPalette()
	if err := override(light, t.Light, "light"); err != nil {
		return nil, err
	}
	dark := light.Dark()
	if err := override(dark, t.Night, "night"); err != nil {
		return nil, err
	}
	th := color.NewTheme(light, dark)
	th.SetDark(t.Dark)
	return th, nil
}

func override(p color.Palette, colors map[string]string, section string) error {
	for role, s := range colors {
		if _, ok := p[role]; !ok {
			return fmt.Errorf("%w: theme.%s: unknown role %q", ErrInvalidConfig, section, role)
		}
		c, err := color.FromCSSColor(s)
		if err != nil {
			return fmt.Errorf("%w: theme.%s.%s: %w", ErrInvalidConfig, section, role, err)
		}
		p[role] = c
	}
	return nil
}
