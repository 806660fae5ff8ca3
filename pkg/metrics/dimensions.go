package metrics

import (
	"fmt"
	"math"
	"strings"
)

// Model selects the numeric formula used for building dimensions.
type Model int

const (
	ModelLinearHeight Model = iota
	ModelCube
	ModelPowerLaw
)

// Model names as accepted by ParseModel and written by String.
const (
	ModelNameLinearHeight = "linear"
	ModelNameCube         = "cube"
	ModelNamePowerLaw     = "powerlaw"
)

// String returns the model's configuration name.
func (m Model) String() string {
	switch m {
	case ModelCube:
		return ModelNameCube
	case ModelPowerLaw:
		return ModelNamePowerLaw
	default:
		return ModelNameLinearHeight
	}
}

// ParseModel resolves a configuration name into a Model.
// The empty string selects the default linear-height model.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ModelNameLinearHeight, "linear-height", "linear_height":
		return ModelLinearHeight, nil
	case ModelNameCube:
		return ModelCube, nil
	case ModelNamePowerLaw, "power-law", "power_law":
		return ModelPowerLaw, nil
	}
	return ModelLinearHeight, fmt.Errorf("unknown dimension model %q (must be one of: linear, cube, powerlaw)", s)
}

// Default dimension parameters.
const (
	DefaultMinLayoutDimension = 5.0
	DefaultMinRenderDimension = 2.5
	DefaultMinVisibleHeight   = 0.5
	DefaultMinVisibleSide     = 5.0
	DefaultHeightFactor       = 20.0
	DefaultExponent           = 0.2
	DefaultEpsilon            = 1e-6
)

// Params configures the dimension model.
type Params struct {
	Model              Model
	MinLayoutDimension float64 // floor for width and depth
	MinVisibleHeight   float64 // height floor (linear-height, power-law)
	MinVisibleSide     float64 // side floor (cube)
	HeightFactor       float64 // height per commit (linear-height)
	Exponent           float64 // p (power-law)
	Epsilon            float64 // lower bound for count (power-law)
}

// DefaultParams returns the linear-height model with the default floors.
func DefaultParams() Params {
	return Params{
		Model:              ModelLinearHeight,
		MinLayoutDimension: DefaultMinLayoutDimension,
		MinVisibleHeight:   DefaultMinVisibleHeight,
		MinVisibleSide:     DefaultMinVisibleSide,
		HeightFactor:       DefaultHeightFactor,
		Exponent:           DefaultExponent,
		Epsilon:            DefaultEpsilon,
	}
}

// withFloors replaces unusable floors with defaults so outputs stay positive.
func (p Params) withFloors() Params {
	if !(p.MinLayoutDimension > 0) {
		p.MinLayoutDimension = DefaultMinLayoutDimension
	}
	if !(p.MinVisibleHeight > 0) {
		p.MinVisibleHeight = DefaultMinVisibleHeight
	}
	if !(p.MinVisibleSide > 0) {
		p.MinVisibleSide = DefaultMinVisibleSide
	}
	if !(p.Epsilon > 0) {
		p.Epsilon = DefaultEpsilon
	}
	return p
}

// Dims is a building's footprint and height.
type Dims struct {
	Width  float64 `json:"width" bson:"width"`
	Depth  float64 `json:"depth" bson:"depth"`
	Height float64 `json:"height" bson:"height"`
}

// Diagnostic reports a recoverable dimension problem.
type Diagnostic struct {
	Clamped bool
	Reason  string
}

// Dimensions computes a file's building dimensions under p.Model.
func Dimensions(loc, count int64, p Params) (Dims, Diagnostic) {
	p = p.withFloors()
	l, c := float64(max(loc, 0)), float64(max(count, 0))

	switch p.Model {
	case ModelCube:
		side := math.Max(l, p.MinVisibleSide)
		foot := math.Max(side, p.MinLayoutDimension)
		return Dims{Width: foot, Depth: foot, Height: side}, Diagnostic{}
	case ModelPowerLaw:
		return powerLaw(l, c, p)
	default:
		foot := math.Max(l, p.MinLayoutDimension)
		h := math.Max(c*p.HeightFactor, p.MinVisibleHeight)
		return Dims{Width: foot, Depth: foot, Height: h}, Diagnostic{}
	}
}

func powerLaw(loc, count float64, p Params) (Dims, Diagnostic) {
	var diag Diagnostic
	k := math.Max(count, p.Epsilon)

	h := loc * math.Pow(k, p.Exponent)
	side := loc * math.Pow(k, -p.Exponent/2)

	// Zero LOC legitimately yields zero and is floored below without comment.
	if invalid(h) {
		diag = Diagnostic{Clamped: true, Reason: fmt.Sprintf("height %v from loc=%v count=%v is not a finite non-negative number", h, loc, count)}
		h = p.MinVisibleHeight
	}
	if invalid(side) {
		if !diag.Clamped {
			diag = Diagnostic{Clamped: true, Reason: fmt.Sprintf("side %v from loc=%v count=%v is not a finite non-negative number", side, loc, count)}
		}
		side = p.MinLayoutDimension
	}

	foot := math.Max(side, p.MinLayoutDimension)
	return Dims{Width: foot, Depth: foot, Height: math.Max(h, p.MinVisibleHeight)}, diag
}

func invalid(v float64) bool {
	return v < 0 || math.IsInf(v, 0) || math.IsNaN(v)
}
