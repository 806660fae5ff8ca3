package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codecity/pkg/metrics"
)

// Default packing parameters.
const (
	DefaultPadding          = 20.0
	DefaultItemSpacing      = 10.0
	DefaultFoundationHeight = 5.0
	DefaultRowWidthFactor   = 1.2
)

// Options configures the packing.
type Options struct {
	Padding          float64 // margin between a directory's edge and its children
	ItemSpacing      float64 // gap between siblings, within and between rows
	FoundationHeight float64 // height of every directory foundation
	RowWidthFactor   float64 // multiplier on √(total child area) for the target row width
	Dimensions       metrics.Params
	Logger           *log.Logger
}

// DefaultOptions returns the standard packing parameters with a discard logger.
func DefaultOptions() Options {
	return Options{
		Padding:          DefaultPadding,
		ItemSpacing:      DefaultItemSpacing,
		FoundationHeight: DefaultFoundationHeight,
		RowWidthFactor:   DefaultRowWidthFactor,
		Dimensions:       metrics.DefaultParams(),
		Logger:           log.New(io.Discard),
	}
}

// Option mutates Options.
type Option func(*Options)

func WithPadding(p float64) Option          { return func(o *Options) { o.Padding = p } }
func WithItemSpacing(s float64) Option      { return func(o *Options) { o.ItemSpacing = s } }
func WithFoundationHeight(h float64) Option { return func(o *Options) { o.FoundationHeight = h } }
func WithRowWidthFactor(f float64) Option   { return func(o *Options) { o.RowWidthFactor = f } }
func WithModel(m metrics.Model) Option      { return func(o *Options) { o.Dimensions.Model = m } }
func WithLogger(l *log.Logger) Option       { return func(o *Options) { o.Logger = l } }

// WithDimensionParams replaces the whole dimension model configuration.
func WithDimensionParams(p metrics.Params) Option {
	return func(o *Options) { o.Dimensions = p }
}

// WithOptions replaces every field at once. Useful when Options come from a
// config file.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		logger := o.Logger
		*o = opts
		if o.Logger == nil {
			o.Logger = logger
		}
	}
}

// normalize falls back to defaults for unusable values. Negative padding and
// spacing become zero; a non-positive row factor becomes the default.
func (o *Options) normalize() {
	o.Padding = nonNegative(o.Padding)
	o.ItemSpacing = nonNegative(o.ItemSpacing)
	o.FoundationHeight = nonNegative(o.FoundationHeight)
	if !(o.RowWidthFactor > 0) {
		o.RowWidthFactor = DefaultRowWidthFactor
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

func nonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return v
}
