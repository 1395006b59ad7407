package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// summaryPrecision is the number of decimals shown for productivity values.
const summaryPrecision = 3

// WriteSummary outputs the summary report, dispatching based on the configured format.
func WriteSummary(report schema.SummaryReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPercent := createFormatters(summaryPrecision)

	switch cfg.Format {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON summary"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, report, fmtFloat)
		}, "Wrote CSV summary"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(w, report, fmtFloat, fmtPercent, duration)
		}, "Wrote summary table")
	}
	return nil
}

// churnByWeek indexes churn rows by week for joining with weekly metrics.
func churnByWeek(churn []schema.QaChurnWeekly) map[time.Time]schema.QaChurnWeekly {
	byWeek := make(map[time.Time]schema.QaChurnWeekly, len(churn))
	for _, c := range churn {
		byWeek[c.Week] = c
	}
	return byWeek
}

// writeSummaryCSV writes one row per week with its QA churn percentages.
func writeSummaryCSV(w io.Writer, report schema.SummaryReport, fmtFloat func(float64) string) error {
	header := []string{
		"week",
		"pilot_tickets",
		"nonpilot_tickets",
		"total_tickets",
		"pilot_productivity",
		"nonpilot_productivity",
		"pilot_qa_churn_pct",
		"nonpilot_qa_churn_pct",
		"low_confidence",
		"holiday",
		"active_pilot_authors",
	}
	churn := churnByWeek(report.QAChurn)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, wk := range report.Weeks {
			c := churn[wk.Week]
			row := []string{
				schema.WeekKey(wk.Week),
				strconv.Itoa(wk.PilotTickets),
				strconv.Itoa(wk.NonPilotTickets),
				strconv.Itoa(wk.TotalTickets),
				fmtFloat(wk.PilotProductivity),
				fmtFloat(wk.NonPilotProductivity),
				strconv.FormatFloat(c.PilotPercent, 'f', 1, 64),
				strconv.FormatFloat(c.NonPilotPercent, 'f', 1, 64),
				strconv.FormatBool(wk.LowConfidence),
				strconv.FormatBool(wk.Holiday),
				strconv.Itoa(wk.ActivePilotAuthors),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeSummaryTable prints the weekly table followed by the KPI cards.
func writeSummaryTable(w io.Writer, report schema.SummaryReport, fmtFloat, fmtPercent func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "%s\n%s (pilot from %s)\n\n", report.Title, report.DataRange, report.PilotStart); err != nil {
		return err
	}

	// --- 1. Weekly metrics ---
	weekly := tablewriter.NewWriter(w)
	weekly.Header([]string{"Week", "Pilot", "Non-Pilot", "Total", "Pilot Prod", "Non-Pilot Prod", "Pilot QA", "Non-Pilot QA", "Flags"})
	weekly.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	churn := churnByWeek(report.QAChurn)
	var data [][]string
	for _, wk := range report.Weeks {
		c := churn[wk.Week]
		data = append(data, []string{
			schema.WeekKey(wk.Week),
			strconv.Itoa(wk.PilotTickets),
			strconv.Itoa(wk.NonPilotTickets),
			strconv.Itoa(wk.TotalTickets),
			fmtFloat(wk.PilotProductivity),
			fmtFloat(wk.NonPilotProductivity),
			fmtPercent(c.PilotPercent),
			fmtPercent(c.NonPilotPercent),
			flagLabel(wk.LowConfidence, wk.Holiday),
		})
	}
	if err := weekly.Bulk(data); err != nil {
		return err
	}
	if err := weekly.Render(); err != nil {
		return err
	}

	// --- 2. KPI cards ---
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	cards := tablewriter.NewWriter(w)
	cards.Header([]string{"KPI", "Value", "Delta", "Context"})
	var cardRows [][]string
	for _, c := range report.Cards {
		cardRows = append(cardRows, []string{c.Label, c.Value, c.Delta, c.Context})
	}
	if err := cards.Bulk(cardRows); err != nil {
		return err
	}
	if err := cards.Render(); err != nil {
		return err
	}

	s := report.Summary
	_, err := fmt.Fprintf(w, "\n%d tickets over %d weeks (%d high-confidence). Summarized in %v.\n",
		s.TotalTickets, s.Weeks, s.ValidWeeks, duration.Round(time.Millisecond))
	return err
}
