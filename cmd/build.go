package cmd

import (
	"github.com/huangsam/pilotkpi/core"
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/spf13/cobra"
)

// buildCmd renders the HTML dashboard.
var buildCmd = &cobra.Command{
	Use:   "build [input]",
	Short: "Render the KPI dashboard as a self-contained HTML file.",
	Long: `Read a ticket activity export, compute weekly pilot and non-pilot metrics,
and write a single HTML file with the charts and headline KPI cards.

The input is a CSV, TSV, XLSX, Parquet or SQLite file. Without an explicit
path, the newest supported file in --data-dir is used. When no ticket falls
in the pilot period, a sample dashboard is rendered and a warning is printed.

Examples:
  # Build from the newest export in ./data
  pilotkpi build

  # Build from a workbook, picking the sheet and the survey sheet
  pilotkpi build exports/activity.xlsx --sheet Activity --survey-sheet Survey

  # Keep a dated copy and the raw payload next to the dashboard
  pilotkpi build --archive-dir archive --payload-file dashboard-data.json

  # Use a custom template and an offline charting library
  pilotkpi build --template site/template.html --chart-lib vendor/chart.umd.min.js`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBuild(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot build dashboard", err)
		}
	},
}
