package cmd

import (
	"context"
	"fmt"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "pilotkpi",
	Short: "Build a pilot vs non-pilot KPI dashboard from ticket activity exports.",
	Long: `Pilotkpi turns a ticket activity export into weekly productivity and QA churn
metrics for a pilot cohort and a baseline cohort, and renders them as a
self-contained HTML dashboard.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig points viper at the config file.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".pilotkpi") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	// Set defaults in Viper for keys that have no flag
	viper.SetDefault("title", contract.DefaultTitle)
	viper.SetDefault("pilot-roster", contract.DefaultPilotRoster)
	viper.SetDefault("non-pilot-roster", contract.DefaultNonPilotRoster)
	viper.SetDefault("min-tickets", contract.DefaultMinTickets)
	viper.SetDefault("rolling-window", contract.DefaultRollingWindow)
	viper.SetDefault("trailing-weeks", contract.DefaultTrailingWeeks)
	viper.SetDefault("trend-start", contract.DefaultTrendStart)
	viper.SetDefault("pilot-start", contract.DefaultPilotStart)
	viper.SetDefault("baseline-productivity", contract.DefaultBaselineProductivity)
	viper.SetDefault("baseline-qa-churn", contract.DefaultBaselineQAChurn)
	viper.SetDefault("holidays", contract.DefaultHolidays)
	viper.SetDefault("output", contract.DefaultOutput)
	viper.SetDefault("chart-lib", contract.DefaultChartLib)
	viper.SetDefault("chart-cdn", contract.DefaultChartCDN)
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.InputPath = args[0]
	}

	// 4. Run all validation and complex parsing.
	// This function populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	contract.ConfigureOutput(cfg.UseColors, cfg.Verbose)
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
