package core

import (
	"fmt"
	"time"

	"github.com/huangsam/pilotkpi/core/algo"
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
	"github.com/samber/lo"
)

// seriesPrecision is the number of decimals kept for chart values.
const seriesPrecision = 4

// assemble merges the analysis into one dashboard document.
func assemble(cfg *contract.Config, a *Analysis, set schema.RecordSet, insights schema.SurveySummary, now time.Time) schema.DashboardPayload {
	weeks := a.TrendWeeks
	labels := lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) string { return schema.WeekLabel(w.Week) })

	return schema.DashboardPayload{
		Meta:         buildMeta(cfg, a, set, now),
		Cards:        a.Cards,
		Summary:      a.Summary,
		Productivity: productivitySeries(cfg, weeks, labels, a.Summary.Trailing),
		QAChurn:      qaChurnSeries(weeks, a.TrendChurn, labels),
		Availability: availabilitySeries(cfg, weeks, labels),
		Cumulative:   cumulativeSeries(weeks, labels),
		HeatMap:      a.HeatMap,
		Methodology:  Methodology(cfg),
		Survey:       insights,
	}
}

func buildMeta(cfg *contract.Config, a *Analysis, set schema.RecordSet, now time.Time) schema.PayloadMeta {
	meta := schema.PayloadMeta{
		Title:           cfg.Title,
		PilotStart:      cfg.PilotStart.Format(contract.DateFormat),
		Roster:          schema.Roster{Pilot: cfg.PilotRoster, NonPilot: cfg.NonPilotRoster},
		WorkdaysPerWeek: schema.WorkdaysPerWeek,
		RollingWindow:   cfg.RollingWindow,
		MinTickets:      cfg.MinTickets,
		ValidWeeks:      lo.CountBy(a.TrendWeeks, func(w schema.WeeklyMetrics) bool { return !w.LowConfidence }),
		Generated:       now.UTC().Format(time.RFC3339),
		DatasetID:       DatasetID(set.Records),
	}
	if n := len(a.TrendWeeks); n > 0 {
		first, last := a.TrendWeeks[0].Week, a.TrendWeeks[n-1].Week
		meta.DataStart = schema.WeekKey(first)
		meta.DataEnd = schema.WeekKey(last)
		meta.DataRange = DataRangeLabel(first, last)
	}
	return meta
}

// DataRangeLabel renders the first and last trend weeks as "Sep 7 – Dec 14, 2025".
func DataRangeLabel(first, last time.Time) string {
	if first.Year() == last.Year() {
		return fmt.Sprintf("%s – %s", first.Format("Jan 2"), last.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s – %s", first.Format("Jan 2, 2006"), last.Format("Jan 2, 2006"))
}

func productivitySeries(cfg *contract.Config, weeks []schema.WeeklyMetrics, labels []string, trailing schema.TrailingDelta) schema.ProductivitySeries {
	pilot := lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) float64 { return w.PilotProductivity })
	nonPilot := lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) float64 { return w.NonPilotProductivity })

	pilotStart := schema.WeekStart(cfg.PilotStart)
	_, startIndex, found := lo.FindIndexOf(weeks, func(w schema.WeeklyMetrics) bool { return !w.Week.Before(pilotStart) })
	if !found {
		startIndex = -1
	}

	return schema.ProductivitySeries{
		Labels:          labels,
		Weeks:           lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) string { return schema.WeekKey(w.Week) }),
		Pilot:           roundAll(pilot),
		NonPilot:        roundAll(nonPilot),
		PilotRolling:    roundAll(algo.MovingAverage(pilot, cfg.RollingWindow)),
		NonPilotRolling: roundAll(algo.MovingAverage(nonPilot, cfg.RollingWindow)),
		PilotTickets:    lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) int { return w.PilotTickets }),
		NonPilotTickets: lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) int { return w.NonPilotTickets }),
		LowConfidence:   lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) bool { return w.LowConfidence }),
		HolidayGap:      lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) bool { return w.Holiday }),
		PilotStartIndex: startIndex,
		Trailing:        trailing,
	}
}

// qaChurnSeries aligns churn rows to the productivity weeks, zero-filling gaps.
func qaChurnSeries(weeks []schema.WeeklyMetrics, churn []schema.QaChurnWeekly, labels []string) schema.QAChurnSeries {
	byWeek := lo.KeyBy(churn, func(c schema.QaChurnWeekly) time.Time { return c.Week })
	series := schema.QAChurnSeries{
		Labels:   labels,
		Pilot:    make([]float64, len(weeks)),
		NonPilot: make([]float64, len(weeks)),
	}
	for i, w := range weeks {
		if c, ok := byWeek[w.Week]; ok {
			series.Pilot[i] = c.PilotPercent
			series.NonPilot[i] = c.NonPilotPercent
		}
	}
	return series
}

func availabilitySeries(cfg *contract.Config, weeks []schema.WeeklyMetrics, labels []string) *schema.AvailabilitySeries {
	return &schema.AvailabilitySeries{
		Labels: labels,
		Active: lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) int { return w.ActivePilotAuthors }),
		Percent: lo.Map(weeks, func(w schema.WeeklyMetrics, _ int) float64 {
			return schema.Round1(schema.SafeDiv(float64(w.ActivePilotAuthors), float64(cfg.PilotRoster)) * 100)
		}),
	}
}

func cumulativeSeries(weeks []schema.WeeklyMetrics, labels []string) *schema.CumulativeSeries {
	series := &schema.CumulativeSeries{
		Labels:     labels,
		Pilot:      make([]int, len(weeks)),
		NonPilot:   make([]int, len(weeks)),
		Total:      make([]int, len(weeks)),
		PilotShare: make([]float64, len(weeks)),
	}
	var pilot, nonPilot int
	for i, w := range weeks {
		pilot += w.PilotTickets
		nonPilot += w.NonPilotTickets
		series.Pilot[i] = pilot
		series.NonPilot[i] = nonPilot
		series.Total[i] = pilot + nonPilot
		series.PilotShare[i] = schema.RoundTo(schema.SafeDiv(float64(pilot), float64(pilot+nonPilot)), seriesPrecision)
	}
	return series
}

func roundAll(values []float64) []float64 {
	return lo.Map(values, func(v float64, _ int) float64 { return schema.RoundTo(v, seriesPrecision) })
}

// Methodology describes how the dashboard numbers are computed, with the
// configured parameters filled in.
func Methodology(cfg *contract.Config) string {
	return fmt.Sprintf(
		"Tickets are grouped by ticket ID and assigned to the Sunday-starting week of their earliest activity; "+
			"a ticket counts as pilot when any of its rows is flagged pilot. "+
			"Weekly productivity is tickets ÷ (roster × %d workdays), with rosters fixed at %d pilot and %d non-pilot developers. "+
			"Weeks with fewer than %d tickets are low confidence and excluded from period averages; "+
			"trend lines use a %d-week trailing moving average. "+
			"KPIs cover weeks from %s onward and compare against a %.2f productivity baseline and a %.1f%% QA churn baseline. "+
			"QA churn is the share of tickets with any QA rework.",
		schema.WorkdaysPerWeek, cfg.PilotRoster, cfg.NonPilotRoster,
		cfg.MinTickets, cfg.RollingWindow,
		cfg.PilotStart.Format(contract.DateFormat), cfg.BaselineProductivity, cfg.BaselineQAChurn)
}
