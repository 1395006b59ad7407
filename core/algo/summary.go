package algo

import (
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// summaryPrecision is the number of decimals kept for ratios in the summary.
const summaryPrecision = 4

// Summarize computes the period KPIs over the given tickets and their weekly series.
// Mean productivity uses the weeks that meet the ticket threshold; when no week
// does, every week is used instead.
func Summarize(tickets []schema.AggregatedTicket, weeks []schema.WeeklyMetrics, churn []schema.QaChurnWeekly, cfg *contract.Config) schema.PeriodSummary {
	s := schema.PeriodSummary{Weeks: len(weeks)}

	// 1. Ticket and author counts
	pilot, nonPilot := lo.FilterReject(tickets, func(t schema.AggregatedTicket, _ int) bool { return t.Pilot })
	s.PilotTickets = len(pilot)
	s.NonPilotTickets = len(nonPilot)
	s.TotalTickets = len(tickets)
	s.PilotAuthors = countAuthors(pilot)
	s.NonPilotAuthors = countAuthors(nonPilot)

	// 2. Productivity mean and spread
	valid := lo.Filter(weeks, func(w schema.WeeklyMetrics, _ int) bool { return !w.LowConfidence })
	s.ValidWeeks = len(valid)
	sample := valid
	if len(sample) == 0 {
		sample = weeks
	}
	s.PilotProductivity, s.PilotProductivityStd = meanStd(lo.Map(sample, func(w schema.WeeklyMetrics, _ int) float64 { return w.PilotProductivity }))
	s.NonPilotProductivity, s.NonPilotProductivityStd = meanStd(lo.Map(sample, func(w schema.WeeklyMetrics, _ int) float64 { return w.NonPilotProductivity }))
	s.ProductivityMultiple = schema.SafeDiv(s.PilotProductivity, s.NonPilotProductivity)
	s.ProductivityDelta = s.PilotProductivity - cfg.BaselineProductivity
	s.ProductivityDeltaPercent = percentOf(s.ProductivityDelta, cfg.BaselineProductivity)

	// 3. Period churn from summed counts
	s.PilotQAChurn = periodChurn(churn, true)
	s.NonPilotQAChurn = periodChurn(churn, false)
	s.QAChurnDelta = s.PilotQAChurn - cfg.BaselineQAChurn
	s.QAChurnDeltaPercent = percentOf(s.QAChurnDelta, cfg.BaselineQAChurn)

	// 4. Shares and coverage
	s.PilotShare = schema.SafeDiv(float64(s.PilotTickets), float64(s.TotalTickets))
	s.ValidWeekFraction = schema.SafeDiv(float64(s.ValidWeeks), float64(s.Weeks))
	s.AvailableWeeks = lo.CountBy(weeks, func(w schema.WeeklyMetrics) bool { return w.PilotTickets > 0 })
	s.Availability = schema.SafeDiv(float64(s.AvailableWeeks), float64(s.Weeks))

	s.Trailing = TrailingDelta(weeks, cfg.TrailingWeeks)

	return roundSummary(s)
}

// TrailingDelta compares pilot and non-pilot mean productivity over the last n weeks,
// as a percentage of the non-pilot mean.
func TrailingDelta(weeks []schema.WeeklyMetrics, n int) schema.TrailingDelta {
	n = max(n, 1)
	if len(weeks) < n {
		n = len(weeks)
	}
	tail := weeks[len(weeks)-n:]
	if len(tail) == 0 {
		return schema.TrailingDelta{}
	}
	pilot := stat.Mean(lo.Map(tail, func(w schema.WeeklyMetrics, _ int) float64 { return w.PilotProductivity }), nil)
	nonPilot := stat.Mean(lo.Map(tail, func(w schema.WeeklyMetrics, _ int) float64 { return w.NonPilotProductivity }), nil)
	return schema.TrailingDelta{
		Weeks:   len(tail),
		Percent: schema.Round1(schema.SafeDiv(pilot-nonPilot, nonPilot) * 100),
	}
}

// meanStd returns the mean and population standard deviation, or zeros for no values.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// percentOf returns delta as a percentage of base, or 0 when base is 0.
func percentOf(delta, base float64) float64 {
	return schema.SafeDiv(delta, base) * 100
}

func periodChurn(churn []schema.QaChurnWeekly, pilot bool) float64 {
	var churned, tickets int
	for _, w := range churn {
		if pilot {
			churned += w.PilotChurned
			tickets += w.PilotTickets
		} else {
			churned += w.NonPilotChurned
			tickets += w.NonPilotTickets
		}
	}
	if tickets == 0 {
		return 0
	}
	return schema.Round1(float64(churned) / float64(tickets) * 100)
}

func countAuthors(tickets []schema.AggregatedTicket) int {
	return len(lo.Uniq(lo.FlatMap(tickets, func(t schema.AggregatedTicket, _ int) []string { return t.Authors })))
}

func roundSummary(s schema.PeriodSummary) schema.PeriodSummary {
	r := func(v float64) float64 { return schema.RoundTo(v, summaryPrecision) }
	s.PilotProductivity = r(s.PilotProductivity)
	s.NonPilotProductivity = r(s.NonPilotProductivity)
	s.PilotProductivityStd = r(s.PilotProductivityStd)
	s.NonPilotProductivityStd = r(s.NonPilotProductivityStd)
	s.ProductivityMultiple = r(s.ProductivityMultiple)
	s.ProductivityDelta = r(s.ProductivityDelta)
	s.ProductivityDeltaPercent = schema.Round1(s.ProductivityDeltaPercent)
	s.QAChurnDelta = schema.Round1(s.QAChurnDelta)
	s.QAChurnDeltaPercent = schema.Round1(s.QAChurnDeltaPercent)
	s.PilotShare = r(s.PilotShare)
	s.ValidWeekFraction = r(s.ValidWeekFraction)
	s.Availability = r(s.Availability)
	return s
}
