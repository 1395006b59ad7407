// Package agg collapses raw activity records into one row per ticket.
package agg

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/huangsam/pilotkpi/schema"
	"github.com/samber/lo"
)

// Options controls which records and tickets the aggregator keeps.
type Options struct {
	// Since drops records dated before this day. Zero keeps everything.
	Since time.Time

	// WeekFloor drops tickets whose week starts before the Sunday on or
	// before this date. Zero keeps every week.
	WeekFloor time.Time
}

// Aggregate groups the records by ticket identifier. Each ticket is assigned
// to the week of its earliest remaining record, is pilot when any of its
// records is, and sums its size and churn metrics. The result is sorted by
// week and then ticket identifier.
func Aggregate(set schema.RecordSet, opts Options) ([]schema.AggregatedTicket, schema.AggregateStats) {
	stats := schema.AggregateStats{
		Input:        len(set.Records),
		DefaultFiles: !set.Columns.Has(schema.FieldFiles),
		DefaultLines: !set.Columns.Has(schema.FieldLines),
	}

	// 1. Drop records without a usable date or before the floor
	records := filterRecords(set.Records, opts.Since, &stats)

	// 2. Group by ticket identifier
	groups := lo.GroupBy(records, func(r schema.RawActivityRecord) string {
		return r.TicketID
	})

	// 3. Build one ticket per group
	var floor time.Time
	if !opts.WeekFloor.IsZero() {
		floor = schema.WeekStart(opts.WeekFloor)
	}
	tickets := make([]schema.AggregatedTicket, 0, len(groups))
	for id, group := range groups {
		ticket := buildTicket(id, group, stats.DefaultFiles, stats.DefaultLines)
		if !floor.IsZero() && ticket.Week.Before(floor) {
			stats.BeforeFloor++
			continue
		}
		tickets = append(tickets, ticket)
	}

	// 4. Deterministic order
	slices.SortFunc(tickets, func(a, b schema.AggregatedTicket) int {
		if c := a.Week.Compare(b.Week); c != 0 {
			return c
		}
		return cmp.Compare(a.TicketID, b.TicketID)
	})
	stats.TicketsKept = len(tickets)

	slog.Debug("Aggregated tickets",
		"records", stats.Input,
		"bad_date", stats.BadDate,
		"before_since", stats.BeforeSince,
		"before_floor", stats.BeforeFloor,
		"tickets", stats.TicketsKept)

	return tickets, stats
}

// filterRecords keeps dated records on or after the since day.
func filterRecords(records []schema.RawActivityRecord, since time.Time, stats *schema.AggregateStats) []schema.RawActivityRecord {
	var sinceDay time.Time
	if !since.IsZero() {
		sinceDay = schema.DayStart(since)
	}

	kept := make([]schema.RawActivityRecord, 0, len(records))
	for _, r := range records {
		if r.Timestamp.IsZero() {
			stats.BadDate++
			continue
		}
		if !sinceDay.IsZero() && schema.DayStart(r.Timestamp).Before(sinceDay) {
			stats.BeforeSince++
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// buildTicket merges all records of a single ticket.
func buildTicket(id string, group []schema.RawActivityRecord, defaultFiles, defaultLines bool) schema.AggregatedTicket {
	first := lo.MinBy(group, func(a, b schema.RawActivityRecord) bool {
		return a.Timestamp.Before(b.Timestamp)
	}).Timestamp.UTC()

	authors := lo.Uniq(lo.FilterMap(group, func(r schema.RawActivityRecord, _ int) (string, bool) {
		return r.Author, r.Author != ""
	}))
	slices.Sort(authors)

	ticket := schema.AggregatedTicket{
		TicketID:  id,
		Week:      schema.WeekStart(first),
		FirstSeen: first,
		Pilot:     lo.SomeBy(group, func(r schema.RawActivityRecord) bool { return r.Pilot }),
		Authors:   authors,
		QAChurn:   lo.SumBy(group, func(r schema.RawActivityRecord) int { return r.QAChurn }),
		Records:   len(group),
	}

	if defaultFiles {
		ticket.FilesChanged = schema.DefaultFilesChanged
	} else {
		ticket.FilesChanged = lo.SumBy(group, func(r schema.RawActivityRecord) int { return r.FilesChanged })
	}
	if defaultLines {
		ticket.LinesChanged = schema.DefaultLinesChanged
	} else {
		ticket.LinesChanged = lo.SumBy(group, func(r schema.RawActivityRecord) int { return r.LinesChanged })
	}

	return ticket
}
