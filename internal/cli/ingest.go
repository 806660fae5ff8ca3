package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cityio "github.com/matzehuels/codecity/pkg/io"
	"github.com/matzehuels/codecity/pkg/pipeline"
	"github.com/matzehuels/codecity/pkg/tree"
)

// ingestCommand creates the ingest command for resolving a source into a tree literal.
func (c *CLI) ingestCommand() *cobra.Command {
	var (
		output string
		flags  sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "ingest <source>",
		Short: "Resolve a source into an aggregated tree literal",
		Long: `Resolve a source into an aggregated tree literal.

A source is a count,path,loc CSV, a tree literal JSON file, a directory to
scan, "-" for standard input, or an http(s) URL. Malformed CSV rows are
skipped and reported. The output is a tree.json that every other command
accepts as a source.`,
		Example: `  codecity ingest commits.csv
  codecity ingest ./myrepo --git-history -o myrepo.tree.json
  git log ... | codecity ingest - -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIngest(cmd.Context(), args[0], &flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <source>.tree.json)")
	flags.register(cmd)

	return cmd
}

// runIngest fetches the source and writes the aggregated tree.
func (c *CLI) runIngest(ctx context.Context, source string, flags *sourceFlags, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := flags.options(source, &cfg)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	fetched, cached, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	stats := tree.ComputeStats(fetched.Root)
	prog.done(fmt.Sprintf("Ingested %d files", stats.Files))
	if skipped := fetched.CSV.Skipped(); skipped > 0 {
		loggerFromContext(ctx).Warn("skipped malformed records", "skipped", skipped)
	}

	var buf bytes.Buffer
	if err := cityio.WriteTreeJSON(&buf, fetched.Root); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", source) + "." + pipeline.Extension(pipeline.FormatTree)
	}
	if err := writeOutput(outputPath, buf.Bytes()); err != nil {
		return err
	}
	if outputPath == "-" {
		return nil
	}

	printSuccess("Ingest complete")
	printFile(outputPath)
	printStats(stats.Files, stats.Directories, cached)
	printNewline()
	printNextStep("Lay out", "codecity layout "+outputPath)
	return nil
}
