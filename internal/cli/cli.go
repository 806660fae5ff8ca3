// Package cli implements the codecity command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codecity/pkg/buildinfo"
	"github.com/matzehuels/codecity/pkg/cache"
	"github.com/matzehuels/codecity/pkg/config"
	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "codecity"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Codecity lays out source trees as 3D code cities",
		Long:         `Codecity turns a file/directory tree weighted by lines of code and commit counts into a non-overlapping code city: directories become stacked foundations, files become buildings whose footprint follows size and whose color follows activity.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/codecity/config.toml)")

	// Register all subcommands
	root.AddCommand(c.ingestCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig resolves and loads the configuration for this invocation.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, path, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Backend == config.CacheRedis {
		// A Redis instance may be shared with other tools.
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}
	runner := pipeline.NewRunner(store, keyer, loggerFromContext(ctx))
	if ttl, err := cfg.CacheTTL(); err == nil {
		runner.TTL = ttl
	}
	return runner, nil
}

// newCache opens the cache backend named by cfg. A file cache that cannot
// be created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect redis %s", cfg.RedisAddr)
		}
		return rc, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			loggerFromContext(ctx).Debug("file cache unavailable", "dir", dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/codecity/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// baseName derives an output base path from a source: the file path without
// extension, the directory name in the working directory, or appName for
// stdin and URLs.
func baseName(source string) string {
	switch {
	case source == "-", strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return appName
	}
	clean := filepath.Clean(source)
	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		abs, err := filepath.Abs(clean)
		if err != nil {
			return appName
		}
		return filepath.Base(abs)
	}
	name := strings.TrimSuffix(filepath.Base(clean), filepath.Ext(clean))
	for _, suffix := range []string{".tree", ".scene"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return filepath.Join(filepath.Dir(clean), name)
}

// basePath strips a known format extension from output, or derives the base
// from source when output is empty.
func basePath(output, source string) string {
	if output == "" {
		return baseName(source)
	}
	for _, f := range []string{pipeline.FormatGraph, pipeline.FormatTree} {
		if ext := "." + pipeline.Extension(f); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", path)
	}
	return f, nil
}

// writeOutput writes data to path (stdout for "-").
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
