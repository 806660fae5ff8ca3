package pipeline

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codecity/pkg/cache"
	errs "github.com/matzehuels/codecity/pkg/errors"
	cityio "github.com/matzehuels/codecity/pkg/io"
	"github.com/matzehuels/codecity/pkg/layout"
	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/observability"
	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/tree"
)

// Cache key types reported to observability hooks.
const (
	keyTypeTree     = "tree"
	keyTypeScene    = "scene"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the scene and artifact cache TTL when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
// A fetch failure returns a nil result.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	fetched, treeHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Source = fetched
	result.Root = fetched.Root
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.Tree = tree.ComputeStats(fetched.Root)
	result.CacheInfo.TreeHit = treeHit
	result.TreeHash = treeHash(fetched.Root)

	r.Logger.Info("fetched source",
		"source", fetched.Source,
		"format", fetched.Format,
		"files", result.Stats.Tree.Files,
		"directories", result.Stats.Tree.Directories,
		"duration", result.Stats.FetchTime)
	if skipped := fetched.CSV.Skipped(); skipped > 0 {
		r.Logger.Warn("skipped malformed records",
			"skipped", skipped,
			"too_short", fetched.CSV.TooShort,
			"empty_path", fetched.CSV.EmptyPath,
			"non_numeric", fetched.CSV.NonNumeric)
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	if err := r.layoutStage(ctx, result, opts); err != nil {
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Clamped = len(result.Scene.Diagnostics)

	r.Logger.Info("laid out city",
		"model", opts.Config.Dimensions.Model,
		"buildings", len(result.Scene.Buildings),
		"foundations", len(result.Scene.Foundations),
		"clamped", result.Stats.Clamped,
		"cached", result.CacheInfo.SceneHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo resolves the source and reports whether the tree came
// from the cache. Only remote sources are cached.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (*cityio.Fetched, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, opts.Source)
	start := time.Now()

	remote := isRemote(opts.Source)
	cacheKey := r.Keyer.TreeKey(opts.Source, cache.TreeKeyOpts{Format: string(opts.inputFormat), Select: opts.Select})

	if remote && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if root, err := cityio.ReadTreeJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeTree)
				fetched := &cityio.Fetched{Root: root, Source: opts.Source, Format: cityio.FormatJSON}
				hooks.OnFetchComplete(ctx, opts.Source, len(tree.Files(root)), time.Since(start), nil)
				return fetched, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeTree)
	}

	fetched, err := cityio.Fetch(ctx, opts.Source, opts.FetchOptions())
	if err != nil {
		hooks.OnFetchComplete(ctx, opts.Source, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnFetchComplete(ctx, opts.Source, len(tree.Files(fetched.Root)), time.Since(start), nil)

	if remote {
		var buf bytes.Buffer
		if err := cityio.WriteTreeJSON(&buf, fetched.Root); err == nil {
			r.set(ctx, keyTypeTree, cacheKey, buf.Bytes(), cache.TreeTTL)
		}
	}
	return fetched, false, nil
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*cityio.Fetched, error) {
	f, _, err := r.FetchWithCacheInfo(ctx, opts)
	return f, err
}

func (r *Runner) layoutStage(ctx context.Context, result *Result, opts Options) error {
	sc, res, hit, err := r.LayoutWithCacheInfo(ctx, result.Root, result.TreeHash, opts)
	if err != nil {
		return err
	}
	result.Scene = sc
	result.Layout = res
	result.Heat = sc.Heat()
	result.CacheInfo.SceneHit = hit

	data, err := scene.Marshal(sc)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode scene")
	}
	result.SceneHash = cache.Hash(data)

	if opts.Check && res != nil {
		result.Violations = layout.Check(res)
		for _, v := range result.Violations {
			r.Logger.Warn("layout violation", "kind", v.Kind, "parent", v.Parent, "path", v.Path, "other", v.Other)
		}
	}
	return nil
}

// LayoutWithCacheInfo normalizes heat, lays out root and emits the scene.
// The layout result is nil when the scene came from the cache; a Check run
// always recomputes.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, root *tree.Node, hash string, opts Options) (*scene.Scene, *layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}
	if hash == "" {
		hash = treeHash(root)
	}
	cacheKey := r.Keyer.SceneKey(hash, opts.SceneSettings())

	if !opts.Refresh && !opts.Check {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if sc, err := scene.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeScene)
				return sc, nil, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeScene)
	}

	sc, res := r.Layout(ctx, root, opts)

	if data, err := scene.Marshal(sc); err == nil {
		r.set(ctx, keyTypeScene, cacheKey, data, r.ttl(cache.SceneTTL))
	}
	return sc, res, false, nil
}

// Layout computes the scene for root without caching.
func (r *Runner) Layout(ctx context.Context, root *tree.Node, opts Options) (*scene.Scene, *layout.Result) {
	model := opts.Config.Dimensions.Model
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, model, len(tree.Files(root)))
	start := time.Now()

	heat := metrics.Normalize(root)
	res := layout.Compute(root, heat, opts.LayoutOptions()...)
	sc := scene.Build(res, heat, opts.Config.Palette())

	hooks.OnLayoutComplete(ctx, model, len(res.Diagnostics), time.Since(start))
	return sc, res
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func treeHash(root *tree.Node) string {
	var buf bytes.Buffer
	if err := cityio.WriteTreeJSON(&buf, root); err != nil {
		return ""
	}
	return cache.Hash(buf.Bytes())
}
