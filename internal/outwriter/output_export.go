package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/internal/parquet"
	"github.com/huangsam/pilotkpi/schema"
)

// DefaultExportPrefix is used when no --output-file prefix is given.
const DefaultExportPrefix = "pilotkpi"

// ExportPaths returns the ticket and weekly file names for a prefix and format.
func ExportPaths(prefix string, format schema.OutputMode) (tickets, weekly string) {
	if prefix == "" {
		prefix = DefaultExportPrefix
	}
	ext := "." + string(format)
	// Accept a prefix that already carries the extension
	prefix = strings.TrimSuffix(prefix, ext)
	return prefix + "-tickets" + ext, prefix + "-weekly" + ext
}

// WriteExport writes the aggregated tickets and weekly metrics as two files.
func WriteExport(bundle schema.ExportBundle, cfg *contract.Config) error {
	ticketsPath, weeklyPath := ExportPaths(cfg.OutputFile, cfg.Format)

	switch cfg.Format {
	case schema.ParquetOut:
		for _, path := range []string{ticketsPath, weeklyPath} {
			if err := ensureParentDir(path); err != nil {
				return err
			}
		}
		if err := parquet.WriteTicketsParquet(parquet.ConvertTickets(bundle.Tickets), ticketsPath); err != nil {
			return fmt.Errorf("error writing %s: %w", ticketsPath, err)
		}
		contract.LogSuccess("Wrote %d tickets to %s", len(bundle.Tickets), ticketsPath)
		if err := parquet.WriteWeeklyParquet(parquet.ConvertWeekly(bundle.Weeks, bundle.QAChurn), weeklyPath); err != nil {
			return fmt.Errorf("error writing %s: %w", weeklyPath, err)
		}
		contract.LogSuccess("Wrote %d weeks to %s", len(bundle.Weeks), weeklyPath)
	case schema.CSVOut:
		if err := writeWithFile(ticketsPath, func(w io.Writer) error {
			return writeTicketsCSV(w, bundle.Tickets)
		}, fmt.Sprintf("Wrote %d tickets", len(bundle.Tickets))); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		if err := writeWithFile(weeklyPath, func(w io.Writer) error {
			return writeWeeklyCSV(w, bundle.Weeks, bundle.QAChurn)
		}, fmt.Sprintf("Wrote %d weeks", len(bundle.Weeks))); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", cfg.Format)
	}
	return nil
}

func writeTicketsCSV(w io.Writer, tickets []schema.AggregatedTicket) error {
	header := []string{"ticket_id", "week", "first_seen", "pilot", "authors", "qa_churn", "files_changed", "lines_changed", "records"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, t := range tickets {
			row := []string{
				t.TicketID,
				schema.WeekKey(t.Week),
				t.FirstSeen.UTC().Format(time.RFC3339),
				strconv.FormatBool(t.Pilot),
				strings.Join(t.Authors, "|"),
				strconv.Itoa(t.QAChurn),
				strconv.Itoa(t.FilesChanged),
				strconv.Itoa(t.LinesChanged),
				strconv.Itoa(t.Records),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeWeeklyCSV(w io.Writer, weeks []schema.WeeklyMetrics, churn []schema.QaChurnWeekly) error {
	fmtFloat, _ := createFormatters(4)
	return writeSummaryCSV(w, schema.SummaryReport{Weeks: weeks, QAChurn: churn}, fmtFloat)
}
