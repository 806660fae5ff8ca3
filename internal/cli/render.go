package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codecity/pkg/pipeline"
)

// renderCommand creates the render command for generating visual outputs.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		formats string
		model   string
		flags   sourceFlags
	)
	opts := pipeline.Options{Scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render <source>",
		Short: "Render a source as a site plan, hierarchy graph or scene JSON",
		Long: `Render a source as a site plan, hierarchy graph or scene JSON.

Formats:
  svg    top-down site plan of the city
  png    site plan rasterized with rsvg-convert
  pdf    site plan converted with rsvg-convert
  json   scene JSON
  dot    directory hierarchy as Graphviz DOT
  graph  directory hierarchy rendered to SVG by Graphviz
  tree   aggregated tree literal

Multiple formats are separated by commas and written next to each other:
<output>.<format>.`,
		Example: `  codecity render commits.csv
  codecity render ./myrepo -f svg,graph --labels -o out/myrepo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			opts.Model = model
			return c.runRender(cmd.Context(), args[0], &flags, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: derived from source)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats, comma-separated: svg, png, pdf, json, dot, graph, tree")
	cmd.Flags().StringVarP(&model, "model", "m", "", "dimension model: linear (default), cube, powerlaw")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "label buildings that fit their name")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "scale factor for SVG and PNG output")
	flags.register(cmd)

	return cmd
}

// runRender runs the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, source string, flags *sourceFlags, renderOpts pipeline.Options, output string) error {
	if err := pipeline.ValidateFormats(renderOpts.Formats); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := flags.options(source, &cfg)
	if err != nil {
		return err
	}
	opts.Formats = renderOpts.Formats
	opts.Model = renderOpts.Model
	opts.Labels = renderOpts.Labels
	opts.Scale = renderOpts.Scale

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(output, source)
	paths := make([]string, 0, len(opts.Formats))
	for _, format := range opts.Formats {
		path := base + "." + pipeline.Extension(format)
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return err
		}
		loggerFromContext(ctx).Debug("wrote artifact", "format", format, "path", path, "bytes", len(result.Artifacts[format]))
		paths = append(paths, path)
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Tree.Files, result.Stats.Tree.Directories, result.CacheInfo.RenderHit)
	return nil
}
