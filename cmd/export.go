package cmd

import (
	"github.com/huangsam/pilotkpi/core"
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/spf13/cobra"
)

// exportCmd writes the aggregated tickets and weekly metrics.
var exportCmd = &cobra.Command{
	Use:   "export [input]",
	Short: "Export aggregated tickets and weekly metrics.",
	Long: `Write two files for the trend period: one row per aggregated ticket and one
row per week with ticket counts, productivity and QA churn by cohort.

The --output-file value is used as a prefix, so --output-file out/run
produces out/run-tickets.parquet and out/run-weekly.parquet.

Examples:
  # Parquet files named pilotkpi-tickets.parquet and pilotkpi-weekly.parquet
  pilotkpi export

  # CSV files under reports/
  pilotkpi export data/activity.xlsx --sheet Activity --format csv --output-file reports/q4`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot export metrics", err)
		}
	},
}
