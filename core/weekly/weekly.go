// Package weekly computes per-week productivity and QA churn by cohort.
package weekly

import (
	"slices"
	"time"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
	"github.com/samber/lo"
)

// Metrics computes one WeeklyMetrics per week present in the tickets, sorted ascending.
// Productivity is tickets / (roster × workdays) for each cohort.
func Metrics(tickets []schema.AggregatedTicket, cfg *contract.Config) []schema.WeeklyMetrics {
	pilotDays := float64(cfg.PilotRoster * schema.WorkdaysPerWeek)
	nonPilotDays := float64(cfg.NonPilotRoster * schema.WorkdaysPerWeek)

	byWeek := groupByWeek(tickets)
	out := make([]schema.WeeklyMetrics, 0, len(byWeek))
	for _, week := range sortedWeeks(byWeek) {
		group := byWeek[week]
		pilot := lo.CountBy(group, isPilot)
		nonPilot := len(group) - pilot

		activeAuthors := lo.Uniq(lo.FlatMap(lo.Filter(group, func(t schema.AggregatedTicket, _ int) bool {
			return t.Pilot
		}), func(t schema.AggregatedTicket, _ int) []string {
			return t.Authors
		}))

		out = append(out, schema.WeeklyMetrics{
			Week:                 week,
			PilotTickets:         pilot,
			NonPilotTickets:      nonPilot,
			TotalTickets:         len(group),
			PilotProductivity:    schema.SafeDiv(float64(pilot), pilotDays),
			NonPilotProductivity: schema.SafeDiv(float64(nonPilot), nonPilotDays),
			LowConfidence:        len(group) < cfg.MinTickets,
			Holiday:              cfg.IsHoliday(week),
			ActivePilotAuthors:   len(activeAuthors),
		})
	}
	return out
}

// QAChurn computes per-week QA churn by cohort, sorted ascending. A ticket
// counts as churned when its QA churn metric is positive.
func QAChurn(tickets []schema.AggregatedTicket) []schema.QaChurnWeekly {
	byWeek := groupByWeek(tickets)
	out := make([]schema.QaChurnWeekly, 0, len(byWeek))
	for _, week := range sortedWeeks(byWeek) {
		row := schema.QaChurnWeekly{Week: week}
		for _, t := range byWeek[week] {
			churned := 0
			if t.QAChurn > 0 {
				churned = 1
			}
			if t.Pilot {
				row.PilotTickets++
				row.PilotChurned += churned
			} else {
				row.NonPilotTickets++
				row.NonPilotChurned += churned
			}
		}
		row.PilotPercent = ChurnPercent(row.PilotChurned, row.PilotTickets)
		row.NonPilotPercent = ChurnPercent(row.NonPilotChurned, row.NonPilotTickets)
		out = append(out, row)
	}
	return out
}

// ChurnPercent returns churned / tickets × 100 rounded to one decimal, or 0 with no tickets.
func ChurnPercent(churned, tickets int) float64 {
	if tickets == 0 {
		return 0
	}
	return schema.Round1(float64(churned) / float64(tickets) * 100)
}

func isPilot(t schema.AggregatedTicket) bool {
	return t.Pilot
}

func groupByWeek(tickets []schema.AggregatedTicket) map[time.Time][]schema.AggregatedTicket {
	return lo.GroupBy(tickets, func(t schema.AggregatedTicket) time.Time {
		return t.Week
	})
}

func sortedWeeks(byWeek map[time.Time][]schema.AggregatedTicket) []time.Time {
	weeks := lo.Keys(byWeek)
	slices.SortFunc(weeks, func(a, b time.Time) int { return a.Compare(b) })
	return weeks
}
