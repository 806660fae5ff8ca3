// Package pipeline provides the core city pipeline for codecity.
//
// This package implements the complete fetch → layout → render pipeline used
// by the CLI and the HTTP server. By centralizing this logic, every entry
// point builds the same city from the same input.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Resolve a source (CSV, tree JSON, checkout, stdin, URL) into a tree
//  2. Layout: Normalize heat, pack the tree and emit the scene
//  3. Render: Generate outputs (scene JSON, SVG plan, DOT, PNG, PDF)
//
// A fetch failure is fatal: no tree exists, so nothing is laid out and
// [Runner.Execute] returns a nil result.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "commits.csv",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codecity/pkg/cache"
	"github.com/matzehuels/codecity/pkg/config"
	errs "github.com/matzehuels/codecity/pkg/errors"
	cityio "github.com/matzehuels/codecity/pkg/io"
	"github.com/matzehuels/codecity/pkg/layout"
	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/tree"
)

// =============================================================================
// Formats
// =============================================================================

// Output formats.
const (
	FormatJSON  = "json"  // scene JSON
	FormatSVG   = "svg"   // top-down site plan
	FormatPNG   = "png"   // site plan, rasterized
	FormatPDF   = "pdf"   // site plan, print
	FormatDOT   = "dot"   // hierarchy as Graphviz DOT
	FormatGraph = "graph" // hierarchy rendered to SVG by Graphviz
	FormatTree  = "tree"  // aggregated tree literal JSON
)

// DefaultScale is the default PNG and SVG scale factor.
const DefaultScale = 1.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:  true,
	FormatSVG:   true,
	FormatPNG:   true,
	FormatPDF:   true,
	FormatDOT:   true,
	FormatGraph: true,
	FormatTree:  true,
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatGraph:
		return "graph.svg"
	case FormatTree:
		return "tree.json"
	}
	return format
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, svg, png, pdf, dot, graph, tree)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Fetch options
	Source      string
	InputFormat string // csv, json, dir or empty to detect
	Select      string // JSONPath selecting a subtree of a tree literal
	Scan        cityio.ScanOptions
	Refresh     bool // bypass cached trees and scenes

	// Layout options
	Config *config.Config // nil uses config.Default()
	Model  string         // overrides Config.Dimensions.Model when set
	Check  bool           // verify containment and non-overlap

	// Render options
	Formats []string
	Labels  bool
	Scale   float64

	// Runtime options
	Logger     *log.Logger
	Stdin      io.Reader
	HTTPClient *http.Client

	inputFormat cityio.Format
	validated   bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" {
		return errs.New(errs.ErrCodeInvalidInput, "source is required")
	}
	f, err := cityio.ParseFormat(o.InputFormat)
	if err != nil {
		return err
	}
	o.inputFormat = f
	if o.Select != "" && f == cityio.FormatCSV {
		return errs.New(errs.ErrCodeUnsupported, "select requires a tree JSON source")
	}

	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	if o.Model != "" {
		m, err := metrics.ParseModel(o.Model)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid model")
		}
		cfg := *o.Config
		cfg.Dimensions.Model = m.String()
		o.Config = &cfg
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// FetchOptions converts the options for [cityio.Fetch].
func (o *Options) FetchOptions() cityio.FetchOptions {
	scan := o.Scan
	if scan.Logger == nil {
		scan.Logger = o.Logger
	}
	return cityio.FetchOptions{
		Format:     o.inputFormat,
		Select:     o.Select,
		Scan:       scan,
		HTTPClient: o.HTTPClient,
		Stdin:      o.Stdin,
		Logger:     o.Logger,
	}
}

// LayoutOptions returns the layout options for the configured settings.
func (o *Options) LayoutOptions() []layout.Option {
	return append(o.Config.LayoutOptions(), layout.WithLogger(o.Logger))
}

// SceneSettings are the settings that change a laid-out scene. They form
// the scene cache key together with the tree hash.
type SceneSettings struct {
	Layout     config.Layout     `json:"layout"`
	Dimensions config.Dimensions `json:"dimensions"`
	Colors     config.Colors     `json:"colors"`
}

// SceneSettings returns the cache-relevant layout settings.
func (o *Options) SceneSettings() SceneSettings {
	return SceneSettings{Layout: o.Config.Layout, Dimensions: o.Config.Dimensions, Colors: o.Config.Colors}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Labels: o.Labels, Scale: o.Scale}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Source is the resolved input.
	Source *cityio.Fetched

	// Root is the aggregated tree.
	Root *tree.Node

	// TreeHash is the content hash of the tree literal.
	TreeHash string

	// Heat maps each file to its normalized commit count.
	Heat metrics.Heat

	// Layout is nil when the scene came from the cache.
	Layout *layout.Result

	// Scene is the emitted city.
	Scene *scene.Scene

	// SceneHash is the content hash of the scene JSON.
	SceneHash string

	// Violations lists geometry problems found when Options.Check is set.
	Violations []layout.Violation

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Tree       tree.Stats
	Clamped    int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TreeHit   bool // Whether the tree came from cache
	SceneHit  bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

func (s Stats) String() string {
	return fmt.Sprintf("%d files, %d directories, depth %d", s.Tree.Files, s.Tree.Directories, s.Tree.MaxDepth)
}
