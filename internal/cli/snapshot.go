package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codecity/pkg/store"
)

// snapshotCommand creates the snapshot command for the persisted scene store.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, list, show and delete persisted scenes",
		Long: `Save, list, show and delete persisted scenes.

Snapshots live in the store configured under [store]: a local SQLite
database by default, or MongoDB.`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

// openStore opens the configured snapshot store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("opening store", "backend", cfg.Store.Backend)
	return store.Open(ctx, cfg.Store)
}

// snapshotSaveCommand creates the "snapshot save" subcommand.
func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var (
		name  string
		flags sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "save <source|scene.json>",
		Short: "Lay out a source and store the scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loaded, err := c.loadScene(ctx, args[0], &flags)
			if err != nil {
				return err
			}

			snap, err := store.NewSnapshot(name, loaded.Source, loaded.Root, loaded.Scene)
			if err != nil {
				return err
			}
			if loaded.Root == nil {
				snap.Stats.Files = len(loaded.Scene.Buildings)
				snap.Stats.Directories = len(loaded.Scene.Foundations)
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Save(ctx, snap); err != nil {
				return err
			}

			printSuccess("Saved snapshot %s", StyleHighlight.Render(snap.Name))
			printKeyValue("ID", snap.ID.String())
			printStats(snap.Stats.Files, snap.Stats.Directories, loaded.Cached)
			printNewline()
			printNextStep("Serve", "codecity serve --snapshot "+snap.ID.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name (default: the source)")
	flags.register(cmd)
	return cmd
}

// snapshotListCommand creates the "snapshot list" subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No snapshots")
				return nil
			}
			fmt.Println(snapshotTable(summaries, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", store.DefaultListLimit, "maximum number of snapshots")
	return cmd
}

// snapshotTable renders summaries as a table.
func snapshotTable(summaries []store.Summary, now time.Time) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.ID.String(),
			s.Name,
			fmt.Sprintf("%d", s.Stats.Files),
			fmt.Sprintf("%d", s.Stats.Directories),
			formatRelativeTime(s.CreatedAt, now),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Files", "Dirs", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 0, 4:
				return StyleDim
			case 2, 3:
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}

// snapshotShowCommand creates the "snapshot show" subcommand.
func (c *CLI) snapshotShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored snapshot, optionally exporting its scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := store.ParseID(args[0])
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Load(ctx, id)
			if err != nil {
				return err
			}

			if output != "" {
				if err := writeOutput(output, snap.Scene); err != nil {
					return err
				}
				if output == "-" {
					return nil
				}
			}

			fmt.Println(StyleTitle.Render(snap.Name))
			printKeyValue("ID", snap.ID.String())
			printKeyValue("Source", snap.Source)
			printKeyValue("Created", snap.CreatedAt.Local().Format(time.RFC3339))
			printKeyValue("Files", fmt.Sprintf("%d", snap.Stats.Files))
			printKeyValue("Directories", fmt.Sprintf("%d", snap.Stats.Directories))
			printKeyValue("Depth", fmt.Sprintf("%d", snap.Stats.MaxDepth))
			printKeyValue("Lines", fmt.Sprintf("%d", snap.Stats.LOC))
			printKeyValue("Commits", fmt.Sprintf("%d", snap.Stats.Count))
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the scene JSON to a file, - for stdout")
	return cmd
}

// snapshotDeleteCommand creates the "snapshot delete" subcommand.
func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := store.ParseID(args[0])
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(ctx, id); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", id)
			return nil
		},
	}
}
