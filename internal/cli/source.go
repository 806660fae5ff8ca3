package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codecity/pkg/config"
	errs "github.com/matzehuels/codecity/pkg/errors"
	cityio "github.com/matzehuels/codecity/pkg/io"
	"github.com/matzehuels/codecity/pkg/pipeline"
	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/tree"
)

// sceneSuffix marks files written by the layout command.
const sceneSuffix = ".scene.json"

// sourceFlags are the flags shared by every command that reads a source.
type sourceFlags struct {
	inputFormat string
	sel         string
	counts      string
	gitHistory  bool
	hidden      bool
	refresh     bool
	noCache     bool
}

// register adds the source flags to cmd.
func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.inputFormat, "input-format", "i", "", "source format: csv, json, dir (default: detect)")
	cmd.Flags().StringVar(&f.sel, "select", "", "JSONPath selecting a subtree of a tree literal")
	cmd.Flags().StringVar(&f.counts, "counts", "", "count,path CSV with commit counts for a directory scan")
	cmd.Flags().BoolVar(&f.gitHistory, "git-history", false, "take commit counts from git log when scanning a checkout")
	cmd.Flags().BoolVar(&f.hidden, "hidden", false, "include dot files when scanning a directory")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached trees and scenes")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options builds pipeline options for source.
func (f *sourceFlags) options(source string, cfg *config.Config) (pipeline.Options, error) {
	opts := pipeline.Options{
		Source:      source,
		InputFormat: f.inputFormat,
		Select:      f.sel,
		Refresh:     f.refresh,
		Config:      cfg,
		Scan: cityio.ScanOptions{
			GitHistory: f.gitHistory,
			Hidden:     f.hidden,
		},
	}
	if source == cityio.Stdin {
		opts.Stdin = os.Stdin
	}
	if f.counts != "" {
		counts, err := readCounts(f.counts)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Scan.Counts = counts
	}
	return opts, nil
}

func readCounts(path string) (map[string]int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open counts %s", path)
	}
	defer file.Close()

	counts, err := cityio.ReadCounts(file)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read counts %s", path)
	}
	return counts, nil
}

// loadedScene is a scene plus the tree it was built from. Root is nil when
// the scene was read from a scene file.
type loadedScene struct {
	Scene  *scene.Scene
	Root   *tree.Node
	Source string
	Cached bool
}

// loadScene reads a scene file, or runs the pipeline on any other source.
func (c *CLI) loadScene(ctx context.Context, source string, flags *sourceFlags) (*loadedScene, error) {
	if strings.HasSuffix(source, sceneSuffix) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read scene %s", source)
		}
		sc, err := scene.Unmarshal(data)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode scene %s", source)
		}
		loggerFromContext(ctx).Debug("loaded scene", "path", source, "pickables", len(sc.Pickables()))
		return &loadedScene{Scene: sc, Source: source}, nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := flags.options(source, &cfg)
	if err != nil {
		return nil, err
	}
	opts.Formats = []string{pipeline.FormatJSON}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &loadedScene{Scene: result.Scene, Root: result.Root, Source: source, Cached: result.CacheInfo.SceneHit}, nil
}
