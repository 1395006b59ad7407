// Package parquet provides data structures and functions for exporting pilotkpi
// tickets and weekly metrics to Parquet files, and for reading flat Parquet
// activity exports, using github.com/parquet-go/parquet-go.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/pilotkpi/schema"
	"github.com/parquet-go/parquet-go"
)

// TicketRow represents one aggregated ticket.
type TicketRow struct {
	// TicketID is the ticket identifier
	TicketID string `parquet:"ticket_id,snappy"`

	// Week is the Sunday-anchored week start (stored as DATE string YYYY-MM-DD)
	Week string `parquet:"week,snappy"`

	// FirstSeen is the earliest contributing timestamp
	FirstSeen time.Time `parquet:"first_seen,snappy"`

	Pilot bool `parquet:"pilot,snappy"`

	// Authors is the comma-joined list of distinct authors
	Authors string `parquet:"authors,snappy"`

	QAChurn      int32 `parquet:"qa_churn,snappy"`
	FilesChanged int32 `parquet:"files_changed,snappy"`
	LinesChanged int32 `parquet:"lines_changed,snappy"`

	// Records is the number of raw rows merged into the ticket
	Records int32 `parquet:"records,snappy"`
}

// WeeklyRow represents the metrics of one week, joined with its QA churn.
type WeeklyRow struct {
	Week                 string  `parquet:"week,snappy"`
	PilotTickets         int32   `parquet:"pilot_tickets,snappy"`
	NonPilotTickets      int32   `parquet:"nonpilot_tickets,snappy"`
	TotalTickets         int32   `parquet:"total_tickets,snappy"`
	PilotProductivity    float64 `parquet:"pilot_productivity,snappy"`
	NonPilotProductivity float64 `parquet:"nonpilot_productivity,snappy"`
	LowConfidence        bool    `parquet:"low_confidence,snappy"`
	Holiday              bool    `parquet:"holiday,snappy"`
	ActivePilotAuthors   int32   `parquet:"active_pilot_authors,snappy"`
	PilotQAChurn         float64 `parquet:"pilot_qa_churn_pct,snappy"`
	NonPilotQAChurn      float64 `parquet:"nonpilot_qa_churn_pct,snappy"`
}

// WriteTicketsParquet writes a slice of TicketRow structs to a Parquet file.
func WriteTicketsParquet(data []TicketRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteWeeklyParquet writes a slice of WeeklyRow structs to a Parquet file.
func WriteWeeklyParquet(data []WeeklyRow, outputPath string) error {
	return writeRows(data, outputPath)
}

func writeRows[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	return nil
}

// ConvertTickets converts aggregated tickets to TicketRow for Parquet export.
func ConvertTickets(tickets []schema.AggregatedTicket) []TicketRow {
	result := make([]TicketRow, len(tickets))
	for i, t := range tickets {
		result[i] = TicketRow{
			TicketID:     t.TicketID,
			Week:         schema.WeekKey(t.Week),
			FirstSeen:    t.FirstSeen,
			Pilot:        t.Pilot,
			Authors:      strings.Join(t.Authors, ","),
			QAChurn:      int32(t.QAChurn),
			FilesChanged: int32(t.FilesChanged),
			LinesChanged: int32(t.LinesChanged),
			Records:      int32(t.Records),
		}
	}
	return result
}

// ConvertWeekly joins weekly metrics with the churn row of the same week.
// Weeks without churn data get zero percentages.
func ConvertWeekly(weeks []schema.WeeklyMetrics, churn []schema.QaChurnWeekly) []WeeklyRow {
	byWeek := make(map[time.Time]schema.QaChurnWeekly, len(churn))
	for _, c := range churn {
		byWeek[c.Week] = c
	}
	result := make([]WeeklyRow, len(weeks))
	for i, w := range weeks {
		c := byWeek[w.Week]
		result[i] = WeeklyRow{
			Week:                 schema.WeekKey(w.Week),
			PilotTickets:         int32(w.PilotTickets),
			NonPilotTickets:      int32(w.NonPilotTickets),
			TotalTickets:         int32(w.TotalTickets),
			PilotProductivity:    w.PilotProductivity,
			NonPilotProductivity: w.NonPilotProductivity,
			LowConfidence:        w.LowConfidence,
			Holiday:              w.Holiday,
			ActivePilotAuthors:   int32(w.ActivePilotAuthors),
			PilotQAChurn:         c.PilotPercent,
			NonPilotQAChurn:      c.NonPilotPercent,
		}
	}
	return result
}

// readBatch is the number of rows read per call.
const readBatch = 256

// ReadTable reads a flat Parquet file into a table. Column names become the
// headers; nested schemas are rejected.
func ReadTable(ctx context.Context, path string) (schema.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return schema.Table{}, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return schema.Table{}, fmt.Errorf("failed to stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return schema.Table{}, fmt.Errorf("failed to open parquet file: %w", err)
	}

	reader := parquet.NewReader(pf)
	defer func() { _ = reader.Close() }()

	fields := reader.Schema().Fields()
	table := schema.Table{Headers: make([]string, len(fields))}
	for i, f := range fields {
		if !f.Leaf() {
			return schema.Table{}, fmt.Errorf("parquet column %q is nested; only flat files are supported", f.Name())
		}
		table.Headers[i] = f.Name()
	}

	rows := make([]parquet.Row, readBatch)
	for {
		if err := ctx.Err(); err != nil {
			return schema.Table{}, err
		}
		n, err := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			cells := make([]any, len(fields))
			for _, v := range row {
				if col := v.Column(); col >= 0 && col < len(fields) {
					cells[col] = cellValue(v, fields[col].Type())
				}
			}
			table.Rows = append(table.Rows, cells)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return schema.Table{}, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return table, nil
}

// cellValue converts a Parquet value to the native cell types used by tables.
func cellValue(v parquet.Value, typ parquet.Type) any {
	if v.IsNull() {
		return nil
	}
	logical := typ.LogicalType()
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		if logical != nil && logical.Date != nil {
			return time.Unix(int64(v.Int32())*24*60*60, 0).UTC()
		}
		return int64(v.Int32())
	case parquet.Int64:
		if logical != nil && logical.Timestamp != nil {
			return timestampValue(v.Int64(), logical.Timestamp.Unit.Millis != nil, logical.Timestamp.Unit.Micros != nil)
		}
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

func timestampValue(raw int64, millis, micros bool) time.Time {
	switch {
	case millis:
		return time.UnixMilli(raw).UTC()
	case micros:
		return time.UnixMicro(raw).UTC()
	default:
		return time.Unix(0, raw).UTC()
	}
}
