// Package outwriter renders the HTML dashboard and writes summaries and
// exports in text, CSV, JSON and Parquet.
package outwriter

import (
	"time"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct {
	now func() time.Time
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{now: time.Now}
}

// WriteDashboard renders and writes the dashboard files.
func (ow *OutWriter) WriteDashboard(payload schema.DashboardPayload, cfg *contract.Config) ([]string, error) {
	return WriteDashboard(payload, cfg, ow.now())
}

// WriteSummary prints the summary report using the configured output format.
func (ow *OutWriter) WriteSummary(report schema.SummaryReport, cfg *contract.Config, duration time.Duration) error {
	return WriteSummary(report, cfg, duration)
}

// WriteExport writes the export files using the configured output format.
func (ow *OutWriter) WriteExport(bundle schema.ExportBundle, cfg *contract.Config) error {
	return WriteExport(bundle, cfg)
}
