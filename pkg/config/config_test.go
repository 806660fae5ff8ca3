package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/layout"
	"github.com/matzehuels/codecity/pkg/metrics"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	var o layout.Options = layout.DefaultOptions()
	for _, opt := range cfg.LayoutOptions() {
		opt(&o)
	}
	assert.Equal(t, layout.DefaultPadding, o.Padding)
	assert.Equal(t, metrics.DefaultParams(), o.Dimensions)
	assert.Equal(t, "#ff0000", cfg.HeatGradient().At(1).Hex())
	assert.Equal(t, "#dddddd", cfg.FoundationShade().At(0).Hex())

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout]
padding = 12.0

[dimensions]
model = "powerlaw"
exponent = 0.3

[colors]
heat_stops = [
  { at = 0.0, color = "#2c7bb6" },
  { at = 0.5, color = "#ffffbf" },
  { at = 1.0, color = "#d7191c" },
]
foundation_base = "#cccccc"

[cache]
backend = "none"
ttl = ""
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12.0, cfg.Layout.Padding)
	assert.Equal(t, layout.DefaultItemSpacing, cfg.Layout.ItemSpacing, "missing keys keep defaults")
	assert.Equal(t, metrics.ModelPowerLaw, cfg.DimensionParams().Model)
	assert.Equal(t, 0.3, cfg.DimensionParams().Exponent)
	assert.Equal(t, "#2c7bb6", cfg.HeatGradient().At(0).Hex())
	assert.Equal(t, "#ffffbf", cfg.HeatGradient().At(0.5).Hex())
	assert.Equal(t, "#cccccc", cfg.Palette().Foundation.At(0).Hex())
	assert.Equal(t, metrics.DefaultMinRenderDimension, cfg.Palette().MinRenderDimension)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errs.Code
	}{
		{"syntax", "[layout\npadding = 1", errs.ErrCodeInvalidConfig},
		{"unknown key", "[layout]\npaddin = 3.0", errs.ErrCodeInvalidConfig},
		{"negative padding", "[layout]\npadding = -1.0", errs.ErrCodeInvalidConfig},
		{"bad model", "[dimensions]\nmodel = \"sphere\"", errs.ErrCodeInvalidConfig},
		{"bad gradient", "[colors]\nheat_stops = [{ at = 0.0, color = \"#000000\" }]", errs.ErrCodeInvalidConfig},
		{"bad color", "[colors]\nground = \"green-ish\"", errs.ErrCodeInvalidConfig},
		{"redis without addr", "[cache]\nbackend = \"redis\"", errs.ErrCodeInvalidConfig},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", errs.ErrCodeInvalidConfig},
		{"bad ttl", "[cache]\nttl = \"soon\"", errs.ErrCodeInvalidConfig},
		{"zero render floor", "[dimensions]\nmin_render_dimension = 0.0", errs.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.GetCode(err), "err = %v", err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errs.Is(err, errs.ErrCodeFileNotFound), "err = %v", err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero row factor", func(c *Config) { c.Layout.RowWidthFactor = 0 }},
		{"zero floor", func(c *Config) { c.Dimensions.MinLayoutDimension = 0 }},
		{"darken above one", func(c *Config) { c.Colors.FoundationDarken = 2 }},
		{"unknown gradient", func(c *Config) { c.Colors.Gradient = "rainbow" }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"unknown store", func(c *Config) { c.Store.Backend = "postgres" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestSimpleGradient(t *testing.T) {
	cfg := Default()
	cfg.Colors.Gradient = "simple"
	assert.Equal(t, "#ffff00", cfg.HeatGradient().At(0).Hex())
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Write(&buf))

	cfg, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "explicit.toml", Resolve("explicit.toml"))

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Empty(t, Resolve(""))

	path := filepath.Join(dir, "codecity", FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[layout]\npadding = 1.0\n"), 0o644))
	assert.Equal(t, path, Resolve(""))

	cfg, used, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 1.0, cfg.Layout.Padding)
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "codecity.toml"))
	require.NoError(t, err)

	assert.Equal(t, metrics.ModelPowerLaw.String(), cfg.Dimensions.Model)
	assert.Equal(t, 0.25, cfg.Dimensions.Exponent)
	assert.Equal(t, "simple", cfg.Colors.Gradient)
	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, ttl)
}
