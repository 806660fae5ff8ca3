package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codecity/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration as TOML.

The output is a complete config file: redirect it to
$XDG_CONFIG_HOME/codecity/config.toml and edit the values to customize
layout constants, dimension model, heat colors, cache and store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return cfg.Write(os.Stdout)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Resolve(c.configPath)
			if path == "" {
				printInfo("No config file, using defaults")
				return nil
			}
			printFile(path)
			return nil
		},
	})

	return cmd
}
