// Package schema has models, enums and small helpers shared by all parts of pilotkpi.
package schema

import "time"

// Table is a raw tabular source as read from a sheet, file or database table.
// Delimited files yield strings. Workbooks type numeric cells as float64 and
// boolean cells as bool. SQLite and Parquet keep the driver's types.
type Table struct {
	Name    string   // Sheet, table or file name the rows came from
	Headers []string // Column headers in source order
	Rows    [][]any  // Data rows; a row may be shorter than Headers
}

// Cell returns the value at row i, column j, or nil when the row is short.
func (t Table) Cell(i, j int) any {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return nil
	}
	return t.Rows[i][j]
}

// RawActivityRecord represents one row of the activity export.
type RawActivityRecord struct {
	TicketID     string    // Ticket identifier (required)
	Timestamp    time.Time // First non-empty candidate date; zero when unparseable
	Author       string    // Author identifier
	Pilot        bool      // Pilot-membership flag
	FilesChanged int       // Files touched by the change
	LinesChanged int       // Lines touched by the change
	QAChurn      int       // QA rework metric (file or line variant)
}

// ColumnMap records which source headers each logical field resolved to.
// Only the date field may resolve to more than one header.
type ColumnMap map[LogicalField][]string

// Has reports whether the logical field resolved to at least one header.
func (m ColumnMap) Has(field LogicalField) bool {
	return len(m[field]) > 0
}

// RecordSet is the output of the record loader.
type RecordSet struct {
	Records []RawActivityRecord
	Columns ColumnMap
	Skipped int // Rows skipped because the ticket identifier was empty
}

// AggregatedTicket is one row per unique ticket identifier.
type AggregatedTicket struct {
	TicketID     string    `json:"ticket_id"`
	Week         time.Time `json:"week"`       // Sunday-anchored week start (UTC midnight)
	FirstSeen    time.Time `json:"first_seen"` // Earliest contributing timestamp
	Pilot        bool      `json:"pilot"`      // Logical OR across contributing records
	Authors      []string  `json:"authors"`    // Distinct non-empty authors, sorted
	QAChurn      int       `json:"qa_churn"`
	FilesChanged int       `json:"files_changed"`
	LinesChanged int       `json:"lines_changed"`
	Records      int       `json:"records"` // Number of contributing raw records
}

// AggregateStats summarizes what the aggregator kept and dropped.
type AggregateStats struct {
	Input        int // Records passed in
	BadDate      int // Dropped because the timestamp could not be parsed
	BeforeSince  int // Dropped because they predate the date floor
	BeforeFloor  int // Tickets dropped because their week predates the week floor
	TicketsKept  int
	DefaultFiles bool // Files column was absent; sentinel applied
	DefaultLines bool // Lines column was absent; sentinel applied
}
