package cmd

import (
	"fmt"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd prints the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML.",
	Long: `Merge the built-in defaults, the config file and the flags, validate the
result and print it in the config file format.

The output is a complete .pilotkpi.yaml, so it can be saved and edited:
  pilotkpi config > .pilotkpi.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		if used := viper.ConfigFileUsed(); used != "" {
			cmd.Printf("# Loaded from %s\n", used)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg.RawInput()); err != nil {
			contract.LogFatal("Cannot print configuration", fmt.Errorf("failed to encode YAML: %w", err))
		}
		if err := enc.Close(); err != nil {
			contract.LogFatal("Cannot print configuration", err)
		}
	},
}
