package cmd

import (
	"github.com/huangsam/pilotkpi/core"
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/spf13/cobra"
)

// summaryCmd prints the weekly metrics and the period KPIs.
var summaryCmd = &cobra.Command{
	Use:   "summary [input]",
	Short: "Print weekly metrics and the pilot period KPIs.",
	Long: `Compute the same weekly metrics as the dashboard and print them, followed
by the headline KPI cards for the pilot period.

Useful for:
- Checking an export before publishing a dashboard
- Feeding the weekly numbers into a spreadsheet or another report

Examples:
  # Print tables to the terminal
  pilotkpi summary data/activity.csv

  # Save the weekly metrics as CSV
  pilotkpi summary --format csv --output-file weekly.csv

  # Full report as JSON
  pilotkpi summary --format json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummary(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot summarize activity", err)
		}
	},
}
