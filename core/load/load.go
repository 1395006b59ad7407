// Package load turns a raw table into typed activity records.
package load

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/huangsam/pilotkpi/schema"
)

var (
	// ErrNoRows is returned when the table has a header but no data rows.
	ErrNoRows = errors.New("table has no data rows")

	// ErrMissingTicketColumn is returned when no ticket identifier header resolves.
	ErrMissingTicketColumn = errors.New("no ticket identifier column found")
)

// Records parses the table into a RecordSet using the ordered header preferences.
// Rows with an empty ticket identifier are skipped and counted.
func Records(table schema.Table, prefs map[schema.LogicalField][]string) (schema.RecordSet, error) {
	// 1. Resolve logical fields to column positions
	indexes, columns := ResolveColumns(table.Headers, prefs)
	set := schema.RecordSet{Columns: columns}

	if len(table.Rows) == 0 {
		return set, fmt.Errorf("%s: %w", tableLabel(table), ErrNoRows)
	}
	if len(indexes[schema.FieldTicket]) == 0 {
		return set, fmt.Errorf("%s: %w (tried %v)", tableLabel(table), ErrMissingTicketColumn, prefs[schema.FieldTicket])
	}

	// 2. Convert every row
	set.Records = make([]schema.RawActivityRecord, 0, len(table.Rows))
	for i := range table.Rows {
		rec, ok := parseRow(table, i, indexes)
		if !ok {
			set.Skipped++
			continue
		}
		set.Records = append(set.Records, rec)
	}

	slog.Debug("Loaded activity records",
		"table", table.Name,
		"rows", len(table.Rows),
		"records", len(set.Records),
		"skipped", set.Skipped)

	return set, nil
}

// ResolveColumns maps each logical field to the positions of its matching headers.
// The date field keeps every present candidate in preference order; all other
// fields keep only the first match.
func ResolveColumns(headers []string, prefs map[schema.LogicalField][]string) (map[schema.LogicalField][]int, schema.ColumnMap) {
	// First occurrence wins when a header is repeated
	position := make(map[string]int, len(headers))
	for i, h := range headers {
		key := schema.NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, seen := position[key]; !seen {
			position[key] = i
		}
	}

	indexes := make(map[schema.LogicalField][]int, len(schema.AllLogicalFields))
	columns := make(schema.ColumnMap, len(schema.AllLogicalFields))
	for _, field := range schema.AllLogicalFields {
		for _, name := range prefs[field] {
			idx, ok := position[schema.NormalizeHeader(name)]
			if !ok || slices.Contains(indexes[field], idx) {
				continue
			}
			indexes[field] = append(indexes[field], idx)
			columns[field] = append(columns[field], headers[idx])
			if field != schema.FieldDate {
				break
			}
		}
	}
	return indexes, columns
}

// parseRow converts row i; it reports false when the ticket identifier is empty.
func parseRow(table schema.Table, i int, indexes map[schema.LogicalField][]int) (schema.RawActivityRecord, bool) {
	cell := func(field schema.LogicalField) any {
		idx := indexes[field]
		if len(idx) == 0 {
			return nil
		}
		return table.Cell(i, idx[0])
	}

	ticket := CellString(cell(schema.FieldTicket))
	if ticket == "" {
		return schema.RawActivityRecord{}, false
	}

	rec := schema.RawActivityRecord{
		TicketID:     ticket,
		Author:       CellString(cell(schema.FieldAuthor)),
		Pilot:        ParsePilot(cell(schema.FieldPilot)),
		FilesChanged: ParseCount(cell(schema.FieldFiles)),
		LinesChanged: ParseCount(cell(schema.FieldLines)),
		QAChurn:      ParseCount(cell(schema.FieldQAChurn)),
	}

	// First non-empty date candidate wins, even if it cannot be parsed
	for _, idx := range indexes[schema.FieldDate] {
		v := table.Cell(i, idx)
		if isBlank(v) {
			continue
		}
		rec.Timestamp, _ = ParseDate(v)
		break
	}

	return rec, true
}

func tableLabel(table schema.Table) string {
	if table.Name == "" {
		return "table"
	}
	return fmt.Sprintf("table %q", table.Name)
}
