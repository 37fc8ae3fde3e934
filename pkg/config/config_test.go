package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/archytas"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/color"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, archytas.DefaultConfig(), cfg.Model)
	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestParseOverlaysDefaults(t *testing.T) {
	src := `
[log]
level = "debug"

[model]
ratio = 0.25
circle_steps = 32

[engine]
timeout = "250ms"

[theme]
dark = true
[theme.light]
stroke = "#123456"
`
	cfg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Model.Ratio)
	assert.Equal(t, 32, cfg.Model.CircleSteps)
	assert.Equal(t, archytas.DefaultConfig().Diameter, cfg.Model.Diameter)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Engine.Timeout))
	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	th, err := cfg.Theme.Build()
	require.NoError(t, err)
	assert.True(t, th.IsDark())
	th.SetDark(false)
	assert.Equal(t, "#123456", th.Color(color.RoleStroke).ToCSSHex())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown key", "[model]\nradius = 2\n", "radius"},
		{"syntax", "[model\n", ""},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log level"},
		{"model", "[model]\nratio = 1.5\n", "ratio"},
		{"eps", "[projector]\neps = 0.5\n", "eps"},
		{"timeout", "[engine]\ntimeout = \"-1s\"\n", "timeout"},
		{"bad duration", "[engine]\ntimeout = \"soon\"\n", ""},
		{"margin", "[render]\nmargin = 300\n", "margin"},
		{"page", "[render]\nwidth = 0\n", "page"},
		{"unknown role", "[theme.light]\nsky = \"#fff\"\n", "unknown role"},
		{"bad color", "[theme.night]\nstroke = \"#zz\"\n", "theme.night.stroke"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Model.Ratio = 0.3
	cfg.Theme.Light = map[string]string{color.RolePoint: "#00ff00"}

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	back, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "archytas.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nwidth = 800\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800.0, cfg.Render.Width)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
