// Package config loads codecity settings from TOML.
//
// Every field has a default, so a config file only needs the keys it
// changes:
//
//	[layout]
//	padding = 12
//
//	[dimensions]
//	model = "powerlaw"
//	exponent = 0.3
//
//	[colors]
//	heat_stops = [
//	  { at = 0.0, color = "#2c7bb6" },
//	  { at = 1.0, color = "#d7191c" },
//	]
//
// Unknown keys are rejected so typos surface instead of being ignored.
package config

import (
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/codecity/pkg/color"
	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/layout"
	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/scene"
)

// FileName is the config file looked up under the user config directory.
const FileName = "config.toml"

// Config is the full configuration.
type Config struct {
	Layout     Layout     `toml:"layout"`
	Dimensions Dimensions `toml:"dimensions"`
	Colors     Colors     `toml:"colors"`
	Cache      Cache      `toml:"cache"`
	Store      Store      `toml:"store"`
	Server     Server     `toml:"server"`
}

// Layout holds the packing constants.
type Layout struct {
	Padding          float64 `toml:"padding"`
	ItemSpacing      float64 `toml:"item_spacing"`
	FoundationHeight float64 `toml:"foundation_height"`
	RowWidthFactor   float64 `toml:"row_width_factor"`
}

// Dimensions selects and tunes the building dimension model.
type Dimensions struct {
	Model              string  `toml:"model"`
	MinLayoutDimension float64 `toml:"min_layout_dimension"`
	MinRenderDimension float64 `toml:"min_render_dimension"`
	MinVisibleHeight   float64 `toml:"min_visible_height"`
	MinVisibleSide     float64 `toml:"min_visible_side"`
	HeightFactor       float64 `toml:"height_factor"`
	Exponent           float64 `toml:"exponent"`
}

// Colors configures the heat gradient and foundation shading.
type Colors struct {
	// Gradient names a built-in gradient ("default" or "simple"); HeatStops
	// overrides it when set.
	Gradient         string       `toml:"gradient"`
	HeatStops        []color.Stop `toml:"heat_stops,omitempty"`
	FoundationBase   color.Color  `toml:"foundation_base"`
	FoundationDarken float64      `toml:"foundation_darken"`
	Ground           color.Color  `toml:"ground"`
}

// Cache selects the scene cache backend.
type Cache struct {
	Backend   string `toml:"backend"` // file, redis or none
	Dir       string `toml:"dir,omitempty"`
	RedisAddr string `toml:"redis_addr,omitempty"`
	TTL       string `toml:"ttl"`
}

// Store selects the snapshot store backend.
type Store struct {
	Backend       string `toml:"backend"` // sqlite or mongo
	SQLitePath    string `toml:"sqlite_path,omitempty"`
	MongoURI      string `toml:"mongo_uri,omitempty"`
	MongoDatabase string `toml:"mongo_database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Backends.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheNone   = "none"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Default returns the built-in configuration.
func Default() Config {
	dims := metrics.DefaultParams()
	return Config{
		Layout: Layout{
			Padding:          layout.DefaultPadding,
			ItemSpacing:      layout.DefaultItemSpacing,
			FoundationHeight: layout.DefaultFoundationHeight,
			RowWidthFactor:   layout.DefaultRowWidthFactor,
		},
		Dimensions: Dimensions{
			Model:              dims.Model.String(),
			MinLayoutDimension: dims.MinLayoutDimension,
			MinRenderDimension: metrics.DefaultMinRenderDimension,
			MinVisibleHeight:   dims.MinVisibleHeight,
			MinVisibleSide:     dims.MinVisibleSide,
			HeightFactor:       dims.HeightFactor,
			Exponent:           dims.Exponent,
		},
		Colors: Colors{
			Gradient:         "default",
			FoundationBase:   color.DefaultFoundationBase,
			FoundationDarken: color.DefaultFoundationDarken,
			Ground:           color.Ground,
		},
		Cache:  Cache{Backend: CacheFile, TTL: "24h"},
		Store:  Store{Backend: StoreSQLite, MongoDatabase: "codecity"},
		Server: Server{Addr: "127.0.0.1:8080"},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve returns explicit when set, else the user config file when it
// exists, else "".
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		d, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		dir = d
	}
	path := filepath.Join(dir, "codecity", FileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// LoadOrDefault loads the resolved config file, or returns the defaults when
// there is none. It also returns the path that was used.
func LoadOrDefault(explicit string) (Config, string, error) {
	path := Resolve(explicit)
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errs.New(errs.ErrCodeInvalidConfig, format, args...)
	}

	l := c.Layout
	for name, v := range map[string]float64{
		"layout.padding":           l.Padding,
		"layout.item_spacing":      l.ItemSpacing,
		"layout.foundation_height": l.FoundationHeight,
		"dimensions.height_factor": c.Dimensions.HeightFactor,
	} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return invalid("%s must be a non-negative number, got %v", name, v)
		}
	}
	if !(l.RowWidthFactor > 0) || math.IsInf(l.RowWidthFactor, 0) {
		return invalid("layout.row_width_factor must be positive, got %v", l.RowWidthFactor)
	}

	d := c.Dimensions
	if _, err := metrics.ParseModel(d.Model); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "dimensions.model")
	}
	for name, v := range map[string]float64{
		"dimensions.min_layout_dimension": d.MinLayoutDimension,
		"dimensions.min_render_dimension": d.MinRenderDimension,
		"dimensions.min_visible_height":   d.MinVisibleHeight,
		"dimensions.min_visible_side":     d.MinVisibleSide,
	} {
		if !(v > 0) || math.IsInf(v, 0) {
			return invalid("%s must be positive, got %v", name, v)
		}
	}
	if math.IsNaN(d.Exponent) || math.IsInf(d.Exponent, 0) {
		return invalid("dimensions.exponent must be finite")
	}

	if _, err := c.heatGradient(); err != nil {
		return err
	}
	if !(c.Colors.FoundationDarken >= 0 && c.Colors.FoundationDarken <= 1) {
		return invalid("colors.foundation_darken must be in [0,1], got %v", c.Colors.FoundationDarken)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("unknown cache.backend %q", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	switch c.Store.Backend {
	case StoreSQLite:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return invalid("store.mongo_uri is required for the mongo backend")
		}
	default:
		return invalid("unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

// DimensionParams returns the dimension model settings. An unknown model
// falls back to linear-height; call Validate to catch it.
func (c Config) DimensionParams() metrics.Params {
	p := metrics.DefaultParams()
	if m, err := metrics.ParseModel(c.Dimensions.Model); err == nil {
		p.Model = m
	}
	p.MinLayoutDimension = c.Dimensions.MinLayoutDimension
	p.MinVisibleHeight = c.Dimensions.MinVisibleHeight
	p.MinVisibleSide = c.Dimensions.MinVisibleSide
	p.HeightFactor = c.Dimensions.HeightFactor
	p.Exponent = c.Dimensions.Exponent
	return p
}

// LayoutOptions converts the config into layout options.
func (c Config) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithPadding(c.Layout.Padding),
		layout.WithItemSpacing(c.Layout.ItemSpacing),
		layout.WithFoundationHeight(c.Layout.FoundationHeight),
		layout.WithRowWidthFactor(c.Layout.RowWidthFactor),
		layout.WithDimensionParams(c.DimensionParams()),
	}
}

// HeatGradient returns the configured gradient, or the default one when
// the configuration is invalid.
func (c Config) HeatGradient() color.Gradient {
	g, err := c.heatGradient()
	if err != nil {
		return color.DefaultHeatGradient
	}
	return g
}

func (c Config) heatGradient() (color.Gradient, error) {
	if len(c.Colors.HeatStops) > 0 {
		g, err := color.NewGradient(c.Colors.HeatStops)
		if err != nil {
			return color.Gradient{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "colors.heat_stops")
		}
		return g, nil
	}
	switch strings.ToLower(c.Colors.Gradient) {
	case "", "default":
		return color.DefaultHeatGradient, nil
	case "simple":
		return color.SimpleHeatGradient, nil
	}
	return color.Gradient{}, errs.New(errs.ErrCodeInvalidConfig, "unknown colors.gradient %q", c.Colors.Gradient)
}

// FoundationShade returns the foundation shading.
func (c Config) FoundationShade() color.FoundationShade {
	return color.FoundationShade{Base: c.Colors.FoundationBase, DarkenPerLevel: c.Colors.FoundationDarken}
}

// Palette bundles the scene colors and the render floor.
func (c Config) Palette() scene.Palette {
	return scene.Palette{
		Heat:               c.HeatGradient(),
		Foundation:         c.FoundationShade(),
		Ground:             c.Colors.Ground,
		MinRenderDimension: c.Dimensions.MinRenderDimension,
	}
}

// CacheTTL parses cache.ttl. An empty value means entries never expire.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errs.New(errs.ErrCodeInvalidConfig, "invalid cache.ttl %q", c.Cache.TTL)
	}
	return d, nil
}
