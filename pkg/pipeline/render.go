package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/codecity/pkg/cache"
	errs "github.com/matzehuels/codecity/pkg/errors"
	cityio "github.com/matzehuels/codecity/pkg/io"
	"github.com/matzehuels/codecity/pkg/observability"
	"github.com/matzehuels/codecity/pkg/render"
	"github.com/matzehuels/codecity/pkg/render/nodelink"
	"github.com/matzehuels/codecity/pkg/render/svg"
	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/tree"
)

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Artifacts are keyed by the scene hash, so any change to the tree or the
// layout settings renders afresh.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	allCached := !opts.Refresh && result.SceneHash != ""
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		cacheKey := r.Keyer.ArtifactKey(result.SceneHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, result.Scene, result.Root, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if result.SceneHash != "" {
		for format, data := range rendered {
			cacheKey := r.Keyer.ArtifactKey(result.SceneHash, opts.ArtifactKeyOpts(format))
			r.set(ctx, keyTypeArtifact, cacheKey, data, r.ttl(cache.ArtifactTTL))
		}
	}
	return rendered, false, nil
}

// Render generates output artifacts in the requested formats. root is only
// needed for the hierarchy formats (dot, graph, tree).
func Render(ctx context.Context, sc *scene.Scene, root *tree.Node, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var plan []byte
	sitePlan := func() []byte {
		if plan == nil {
			svgOpts := []svg.Option{svg.WithScale(opts.Scale)}
			if opts.Labels {
				svgOpts = append(svgOpts, svg.WithLabels())
			}
			plan = svg.Render(sc, svgOpts...)
		}
		return plan
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = scene.Marshal(sc)
		case FormatSVG:
			data = sitePlan()
		case FormatPNG:
			data, err = render.ToPNG(sitePlan(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(sitePlan())
		case FormatDOT, FormatGraph, FormatTree:
			if root == nil {
				return nil, errs.New(errs.ErrCodeInvalidInput, "format %s needs the source tree", format)
			}
			data, err = renderTree(ctx, format, root, sc, opts)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderTree(ctx context.Context, format string, root *tree.Node, sc *scene.Scene, opts Options) ([]byte, error) {
	if format == FormatTree {
		var buf bytes.Buffer
		if err := cityio.WriteTreeJSON(&buf, root); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	dot := nodelink.ToDOT(root, sc.Heat(), nodelink.Options{
		Detailed: opts.Labels,
		Gradient: opts.Config.HeatGradient(),
	})
	if format == FormatDOT {
		return []byte(dot), nil
	}
	return nodelink.RenderSVG(ctx, dot)
}
