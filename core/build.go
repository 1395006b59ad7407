package core

import (
	"log/slog"
	"time"

	"github.com/huangsam/pilotkpi/core/agg"
	"github.com/huangsam/pilotkpi/core/algo"
	"github.com/huangsam/pilotkpi/core/heatmap"
	"github.com/huangsam/pilotkpi/core/survey"
	"github.com/huangsam/pilotkpi/core/weekly"
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
)

// Analysis holds every intermediate structure of a run. Trend data starts at
// the trend floor and feeds the charts; KPI data starts at the pilot week and
// feeds the headline cards.
type Analysis struct {
	TrendTickets []schema.AggregatedTicket
	TrendStats   schema.AggregateStats
	TrendWeeks   []schema.WeeklyMetrics
	TrendChurn   []schema.QaChurnWeekly

	KPITickets []schema.AggregatedTicket
	KPIStats   schema.AggregateStats
	KPIWeeks   []schema.WeeklyMetrics
	KPIChurn   []schema.QaChurnWeekly

	Summary schema.PeriodSummary
	Cards   []schema.KpiCard
	HeatMap schema.HeatMap
}

// Empty reports whether there is too little data to compute a dashboard.
func (a *Analysis) Empty() bool {
	return len(a.KPITickets) == 0 || len(a.TrendWeeks) == 0
}

// Analyze runs the aggregator twice and computes the weekly series, period
// summary, cards and heat map.
func Analyze(cfg *contract.Config, set schema.RecordSet) *Analysis {
	a := &Analysis{}

	// --- 1. Trend period ---
	a.TrendTickets, a.TrendStats = agg.Aggregate(set, agg.Options{Since: cfg.TrendStart})
	a.TrendWeeks = weekly.Metrics(a.TrendTickets, cfg)
	a.TrendChurn = weekly.QAChurn(a.TrendTickets)

	// --- 2. KPI period ---
	a.KPITickets, a.KPIStats = agg.Aggregate(set, agg.Options{Since: cfg.TrendStart, WeekFloor: cfg.PilotStart})
	a.KPIWeeks = weekly.Metrics(a.KPITickets, cfg)
	a.KPIChurn = weekly.QAChurn(a.KPITickets)

	// --- 3. Summary ---
	a.Summary = algo.Summarize(a.KPITickets, a.KPIWeeks, a.KPIChurn, cfg)
	a.Cards = algo.Cards(a.Summary, cfg)
	a.HeatMap = heatmap.Build(a.KPITickets)

	slog.Info("Computed weekly metrics",
		"trend_tickets", len(a.TrendTickets),
		"trend_weeks", len(a.TrendWeeks),
		"kpi_tickets", len(a.KPITickets),
		"kpi_weeks", len(a.KPIWeeks))

	return a
}

// Build computes the dashboard payload for the records. When the KPI period or
// the trend series is empty it returns the sample fallback instead; this is
// not an error.
func Build(cfg *contract.Config, set schema.RecordSet, surveyTable *schema.Table, now time.Time) schema.Result {
	a := Analyze(cfg, set)
	if a.Empty() {
		reason := fallbackReason(set, a)
		slog.Warn("Using sample dashboard data", "reason", reason)
		return Fallback(now, reason)
	}

	payload := assemble(cfg, a, set, survey.Extract(surveyTable), now)
	payload.Meta.Source = schema.ComputedResult
	return schema.Result{Kind: schema.ComputedResult, Payload: payload}
}

func fallbackReason(set schema.RecordSet, a *Analysis) string {
	switch {
	case len(set.Records) == 0:
		return "no usable ticket rows"
	case len(a.TrendWeeks) == 0:
		return "no tickets on or after the trend start"
	default:
		return "no tickets on or after the pilot start"
	}
}
