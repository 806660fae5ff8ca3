package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/codecity/pkg/errors"
)

// inspectCommand creates the inspect command for browsing a scene interactively.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "inspect <source|scene.json>",
		Short: "Browse buildings and foundations with their tooltips",
		Long: `Browse buildings and foundations with their tooltips.

The argument is either a scene JSON written by 'layout' or any source, which
is laid out first. Tab cycles between all pickables, buildings and
foundations; +/- change the maximum nesting depth shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], &flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runInspect loads the scene and runs the inspector until the user quits.
func (c *CLI) runInspect(ctx context.Context, source string, flags *sourceFlags) error {
	loaded, err := c.loadScene(ctx, source, flags)
	if err != nil {
		return err
	}
	if len(loaded.Scene.Pickables()) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scene %s is empty", source)
	}

	p := tea.NewProgram(NewInspectModel(loaded.Scene), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}
