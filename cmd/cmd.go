// Package cmd defines the command-line interface for pilotkpi.
package cmd

import (
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory searched for the newest input file when no path is given")
	rootCmd.PersistentFlags().String("sheet", "", "Sheet or table to read from the input")
	rootCmd.PersistentFlags().String("survey-sheet", "", "Survey sheet or table in the input (or in --survey-file)")
	rootCmd.PersistentFlags().String("survey-file", "", "Separate file holding the survey responses")
	rootCmd.PersistentFlags().String("pilot-start", contract.DefaultPilotStart, "First day of the pilot period (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("trend-start", contract.DefaultTrendStart, "First day of the trend charts (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Int("pilot-roster", contract.DefaultPilotRoster, "Number of developers in the pilot cohort")
	rootCmd.PersistentFlags().Int("non-pilot-roster", contract.DefaultNonPilotRoster, "Number of developers in the non-pilot cohort")
	rootCmd.PersistentFlags().Int("min-tickets", contract.DefaultMinTickets, "Weeks with fewer tickets are low confidence")
	rootCmd.PersistentFlags().String("format", "", "Output format (summary: text or json or csv; export: parquet or csv)")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to (a prefix for export)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details to stderr")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of buildCmd to Viper
	buildCmd.Flags().StringP("output", "o", contract.DefaultOutput, "Path of the generated dashboard")
	buildCmd.Flags().String("archive-dir", "", "Directory for a dated copy of the dashboard")
	buildCmd.Flags().String("payload-file", "", "Optional path for the dashboard data as JSON")
	buildCmd.Flags().String("template", "", "HTML template to use instead of the built-in one")
	buildCmd.Flags().String("chart-lib", contract.DefaultChartLib, "Local charting library to inline")
	buildCmd.Flags().String("chart-cdn", contract.DefaultChartCDN, "Charting library URL used when --chart-lib is missing")
	buildCmd.Flags().String("title", contract.DefaultTitle, "Dashboard title")
	if err := viper.BindPFlags(buildCmd.Flags()); err != nil {
		contract.LogFatal("Error binding build flags", err)
	}
}
