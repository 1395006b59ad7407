package core

import (
	"fmt"
	"time"

	"github.com/huangsam/pilotkpi/core/survey"
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
)

// sampleWeek is one hardcoded week of the fallback dataset.
type sampleWeek struct {
	pilot, nonPilot               int
	pilotChurned, nonPilotChurned int
}

// sampleStart is the first week of the fallback dataset.
var sampleStart = time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)

// sampleWeeks are twelve consecutive weeks from sampleStart. The eleventh is
// below the ticket threshold and the twelfth is a holiday week.
var sampleWeeks = []sampleWeek{
	{2, 14, 0, 3},
	{3, 15, 1, 3},
	{2, 13, 0, 2},
	{3, 16, 1, 4},
	{5, 15, 1, 3},
	{6, 14, 1, 3},
	{7, 15, 1, 3},
	{6, 13, 1, 2},
	{8, 16, 1, 3},
	{7, 14, 1, 3},
	{1, 2, 0, 1},
	{6, 12, 1, 2},
}

var sampleSurvey = schema.Table{
	Name: "Survey",
	Headers: []string{
		"How has the assistant affected your productivity?",
		"Any change in code quality or rework?",
		"Overall experience",
	},
	Rows: [][]any{
		{"Boilerplate and test scaffolding take a fraction of the time.", "Fewer review round-trips on small changes.", "Positive, would keep using it."},
		{"Faster on unfamiliar parts of the codebase.", "Occasional suggestions need a second look.", "Helpful once prompts are tuned."},
	},
}

// sampleConfig is the fixed configuration the fallback payload is computed with.
func sampleConfig() *contract.Config {
	raw := contract.DefaultRawInput()
	raw.Title = contract.DefaultTitle + " (sample data)"
	raw.PilotRoster = 6
	raw.NonPilotRoster = 18
	raw.TrendStart = "2025-09-07"
	raw.PilotStart = "2025-10-05"

	cfg := &contract.Config{}
	if err := contract.ProcessAndValidate(cfg, raw); err != nil {
		panic(fmt.Sprintf("sample configuration is invalid: %v", err))
	}
	return cfg
}

// sampleRecords expands sampleWeeks into one raw record per ticket.
func sampleRecords() schema.RecordSet {
	columns := schema.ColumnMap{}
	for _, field := range schema.AllLogicalFields {
		columns[field] = []string{string(field)}
	}
	set := schema.RecordSet{Columns: columns}

	n := 0
	for i, w := range sampleWeeks {
		week := sampleStart.AddDate(0, 0, 7*i)
		add := func(pilot bool, churned bool) {
			n++
			author := fmt.Sprintf("dev-%02d", n%18+1)
			if pilot {
				author = fmt.Sprintf("pilot-%d", n%6+1)
			}
			churn := 0
			if churned {
				churn = 1 + n%3
			}
			set.Records = append(set.Records, schema.RawActivityRecord{
				TicketID:     fmt.Sprintf("SAMPLE-%03d", n),
				Timestamp:    week.AddDate(0, 0, n%5+1).Add(10 * time.Hour),
				Author:       author,
				Pilot:        pilot,
				FilesChanged: 1 + (n*7)%14,
				LinesChanged: 40 + (n*137)%1400,
				QAChurn:      churn,
			})
		}
		for j := range w.pilot {
			add(true, j < w.pilotChurned)
		}
		for j := range w.nonPilot {
			add(false, j < w.nonPilotChurned)
		}
	}
	return set
}

// Fallback returns the sample dashboard. Every field except the generated
// timestamp is identical between calls.
func Fallback(now time.Time, reason string) schema.Result {
	cfg := sampleConfig()
	set := sampleRecords()
	a := Analyze(cfg, set)

	payload := assemble(cfg, a, set, survey.Extract(&sampleSurvey), now)
	payload.Meta.Source = schema.FallbackResult
	payload.Meta.SampleData = true
	return schema.Result{Kind: schema.FallbackResult, Payload: payload, Reason: reason}
}
