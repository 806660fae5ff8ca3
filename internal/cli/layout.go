package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/pipeline"
)

// layoutCommand creates the layout command for computing the city layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		model  string
		check  bool
		flags  sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "layout <source>",
		Short: "Compute the city layout of a source",
		Long: `Compute the city layout of a source.

The layout command aggregates the tree, normalizes commit counts into heat,
packs every directory's children into rows and emits the scene: absolute
foundation and building boxes, colors, ground and camera hint. The output is
a scene JSON that 'serve', 'inspect' and 'snapshot save' accept.

Scenes are cached by tree content and layout settings; --check always
recomputes and verifies containment and sibling non-overlap.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &flags, model, check, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <source>.scene.json)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "dimension model: linear (default), cube, powerlaw")
	cmd.Flags().BoolVar(&check, "check", false, "verify containment and non-overlap; fail on violations")
	flags.register(cmd)

	return cmd
}

// runLayout runs the pipeline and writes the scene JSON.
func (c *CLI) runLayout(ctx context.Context, source string, flags *sourceFlags, model string, check bool, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := flags.options(source, &cfg)
	if err != nil {
		return err
	}
	opts.Model = model
	opts.Check = check
	opts.Formats = []string{pipeline.FormatJSON}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", source) + sceneSuffix
	}
	if err := writeOutput(outputPath, result.Artifacts[pipeline.FormatJSON]); err != nil {
		return err
	}

	if len(result.Violations) > 0 {
		return errs.New(errs.ErrCodeInternal, "layout check found %d violations", len(result.Violations))
	}
	if outputPath == "-" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.Tree.Files, result.Stats.Tree.Directories, result.CacheInfo.SceneHit)
	if result.Stats.Clamped > 0 {
		printWarning("%d buildings clamped to minimum size", result.Stats.Clamped)
	}
	if check {
		printDetail("Check passed")
	}
	printNewline()
	printNextStep("Inspect", "codecity inspect "+outputPath)
	return nil
}
