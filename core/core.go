// Package core assembles the pilot KPI dashboard and has the entry points
// that wire record sources, metric computation and writers together.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/pilotkpi/core/load"
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/internal/outwriter"
	"github.com/huangsam/pilotkpi/internal/source"
	"github.com/huangsam/pilotkpi/schema"
)

// ExecutorFunc defines the function signature for the command entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// Inputs holds everything read from disk for one run.
type Inputs struct {
	Path    string
	Records schema.RecordSet
	Survey  *schema.Table
}

// ExecuteBuild runs the full pipeline and writes the HTML dashboard.
func ExecuteBuild(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	in, err := LoadInputs(ctx, cfg, true)
	if err != nil {
		return err
	}

	result := Build(cfg, in.Records, in.Survey, start)
	if result.IsFallback() {
		contract.LogWarn("Rendering sample dashboard", errors.New(result.Reason))
	}

	written, err := outwriter.NewOutWriter().WriteDashboard(result.Payload, cfg)
	if err != nil {
		return err
	}
	slog.Info("Dashboard build finished",
		"input", in.Path,
		"source", result.Kind,
		"files", len(written),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// ExecuteSummary prints the weekly metrics and the period KPIs.
func ExecuteSummary(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	if err := cfg.ValidateFormat(schema.ValidSummaryModes, schema.TextOut); err != nil {
		return err
	}
	in, err := LoadInputs(ctx, cfg, false)
	if err != nil {
		return err
	}

	report := Summary(cfg, in.Records)
	if len(report.Weeks) == 0 {
		contract.LogWarn("Nothing to summarize", errors.New("no tickets on or after the trend start"))
	}
	return outwriter.NewOutWriter().WriteSummary(report, cfg, time.Since(start))
}

// ExecuteExport writes the aggregated tickets and weekly metrics of the trend period.
func ExecuteExport(ctx context.Context, cfg *contract.Config) error {
	if err := cfg.ValidateFormat(schema.ValidExportModes, schema.ParquetOut); err != nil {
		return err
	}
	in, err := LoadInputs(ctx, cfg, false)
	if err != nil {
		return err
	}

	a := Analyze(cfg, in.Records)
	bundle := schema.ExportBundle{
		Tickets: a.TrendTickets,
		Weeks:   a.TrendWeeks,
		QAChurn: a.TrendChurn,
	}
	return outwriter.NewOutWriter().WriteExport(bundle, cfg)
}

// Summary computes the report printed by the summary command.
func Summary(cfg *contract.Config, set schema.RecordSet) schema.SummaryReport {
	a := Analyze(cfg, set)
	report := schema.SummaryReport{
		Title:      cfg.Title,
		PilotStart: cfg.PilotStart.Format(contract.DateFormat),
		DatasetID:  DatasetID(set.Records),
		Weeks:      a.TrendWeeks,
		QAChurn:    a.TrendChurn,
		Summary:    a.Summary,
		Cards:      a.Cards,
		Stats:      a.TrendStats,
	}
	if n := len(a.TrendWeeks); n > 0 {
		report.DataRange = DataRangeLabel(a.TrendWeeks[0].Week, a.TrendWeeks[n-1].Week)
	}
	return report
}

// LoadInputs locates the input, reads the selected sheet and parses its
// records. A sheet without usable rows is a warning and yields an empty
// record set. The survey is only read when withSurvey is set; failing to read
// it is a warning.
func LoadInputs(ctx context.Context, cfg *contract.Config, withSurvey bool) (*Inputs, error) {
	// 1. Locate
	path := cfg.InputPath
	if path == "" {
		discovered, err := source.Discover(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	// 2. Open and read
	src, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	return readInputs(ctx, cfg, src, withSurvey)
}

// readInputs does the reading half of LoadInputs on an open source.
func readInputs(ctx context.Context, cfg *contract.Config, src contract.RecordSource, withSurvey bool) (*Inputs, error) {
	in := &Inputs{Path: src.Path()}

	table, err := source.ReadSelected(ctx, src, cfg.Sheet, "")
	if err != nil {
		return nil, err
	}

	// 3. Parse records
	set, err := load.Records(table, cfg.Columns)
	switch {
	case errors.Is(err, load.ErrNoRows), errors.Is(err, load.ErrMissingTicketColumn):
		contract.LogWarn("No usable activity rows", err)
		set = schema.RecordSet{Columns: set.Columns}
	case err != nil:
		return nil, fmt.Errorf("cannot load records: %w", err)
	}
	in.Records = set
	slog.Info("Loaded activity records", "records", len(set.Records), "skipped", set.Skipped)

	// 4. Optional survey
	if withSurvey {
		survey, err := source.Survey(ctx, src, cfg.SurveySheet, cfg.SurveyFile)
		if err != nil {
			contract.LogWarn("Cannot read survey", err)
		}
		in.Survey = survey
	}
	return in, nil
}
