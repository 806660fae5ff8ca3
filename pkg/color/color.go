// Package color maps heat values and nesting depth to colors.
//
// Heat colors come from a piecewise-linear [Gradient] over control points;
// the default runs blue → yellow → red. Foundation colors are a flat gray
// darkened linearly per nesting level. Interpolation is plain per-channel
// RGB, not gamma-correct.
package color

import (
	"fmt"
	"math"
	"slices"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with channels in [0,1].
type Color struct {
	colorful.Color
}

// RGB builds a Color from channel values in [0,1].
func RGB(r, g, b float64) Color {
	return Color{colorful.Color{R: r, G: g, B: b}}
}

// MustHex parses a "#rrggbb" string and panics on error. Intended for constants.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHex parses "#rrggbb" or "rrggbb" (also "0xrrggbb").
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{c}, nil
}

// Hex returns the "#rrggbb" form.
func (c Color) Hex() string {
	return c.Clamped().Hex()
}

// Scale multiplies every channel by f.
func (c Color) Scale(f float64) Color {
	return RGB(c.R*f, c.G*f, c.B*f)
}

// Lerp interpolates linearly between a and b per channel.
func Lerp(a, b Color, t float64) Color {
	return Color{a.BlendRgb(b.Color, t)}
}

// MarshalText encodes the color as "#rrggbb".
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes "#rrggbb".
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Named colors used by the defaults.
var (
	Blue   = MustHex("#0000ff")
	Yellow = MustHex("#ffff00")
	Red    = MustHex("#ff0000")
	Ground = MustHex("#50c878")
)

// Stop is a gradient control point.
type Stop struct {
	At    float64 `toml:"at" json:"at"`
	Color Color   `toml:"color" json:"color"`
}

// Gradient is a piecewise-linear color ramp over [0,1].
type Gradient struct {
	stops []Stop
}

// DefaultHeatGradient runs blue → yellow → red, with yellow at 0.5.
var DefaultHeatGradient = Gradient{stops: []Stop{
	{At: 0, Color: Blue},
	{At: 0.5, Color: Yellow},
	{At: 1, Color: Red},
}}

// SimpleHeatGradient runs yellow → red in a single segment.
var SimpleHeatGradient = Gradient{stops: []Stop{
	{At: 0, Color: Yellow},
	{At: 1, Color: Red},
}}

// NewGradient validates stops and builds a Gradient. Stops must number at
// least two, lie in [0,1], be strictly increasing, and start at 0 and end at 1.
func NewGradient(stops []Stop) (Gradient, error) {
	if len(stops) < 2 {
		return Gradient{}, fmt.Errorf("gradient needs at least 2 stops, got %d", len(stops))
	}
	for i, s := range stops {
		if math.IsNaN(s.At) || s.At < 0 || s.At > 1 {
			return Gradient{}, fmt.Errorf("gradient stop %d at %v is outside [0,1]", i, s.At)
		}
		if i > 0 && s.At <= stops[i-1].At {
			return Gradient{}, fmt.Errorf("gradient stops must be strictly increasing (stop %d at %v)", i, s.At)
		}
	}
	if stops[0].At != 0 || stops[len(stops)-1].At != 1 {
		return Gradient{}, fmt.Errorf("gradient must start at 0 and end at 1")
	}
	return Gradient{stops: slices.Clone(stops)}, nil
}

// Stops returns a copy of the control points.
func (g Gradient) Stops() []Stop {
	return slices.Clone(g.stops)
}

// At returns the color for heat h. h is clamped to [0,1]; NaN counts as 0.
// The first and last stops are returned exactly at the ends.
func (g Gradient) At(h float64) Color {
	stops := g.stops
	if len(stops) == 0 {
		stops = DefaultHeatGradient.stops
	}
	h = clampUnit(h)

	if h <= stops[0].At {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if h >= last.At {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		lo, hi := stops[i-1], stops[i]
		if h <= hi.At {
			return Lerp(lo.Color, hi.Color, (h-lo.At)/(hi.At-lo.At))
		}
	}
	return last.Color
}

// HeatColor maps h through the default heat gradient.
func HeatColor(h float64) Color {
	return DefaultHeatGradient.At(h)
}

func clampUnit(h float64) float64 {
	switch {
	case math.IsNaN(h), h < 0:
		return 0
	case h > 1:
		return 1
	}
	return h
}

// Default foundation shading.
var (
	DefaultFoundationBase   = MustHex("#dddddd")
	DefaultFoundationDarken = 0.05
	DefaultFoundationShade  = FoundationShade{Base: DefaultFoundationBase, DarkenPerLevel: DefaultFoundationDarken}
)

// FoundationShade darkens a base gray with nesting depth.
type FoundationShade struct {
	Base           Color
	DarkenPerLevel float64
}

// At returns Base scaled by max(0, 1 − depth·DarkenPerLevel) per channel.
func (f FoundationShade) At(depth int) Color {
	return f.Base.Scale(math.Max(0, 1-float64(depth)*f.DarkenPerLevel))
}

// FoundationColor shades the default foundation gray for depth.
func FoundationColor(depth int) Color {
	return DefaultFoundationShade.At(depth)
}
