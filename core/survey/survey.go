// Package survey pulls best-effort free-text insights out of a survey sheet.
package survey

import (
	"strings"

	"github.com/huangsam/pilotkpi/core/load"
	"github.com/huangsam/pilotkpi/schema"
)

// QuoteLimit is the maximum quote length in runes before truncation.
const QuoteLimit = 120

// Topic is a survey theme matched against column headers.
type Topic struct {
	Name     string
	Keywords []string // Lower-case substrings
}

// Topics are extracted in this order.
var Topics = []Topic{
	{Name: "productivity", Keywords: []string{"productiv"}},
	{Name: "quality", Keywords: []string{"quality", "churn"}},
	{Name: "experience", Keywords: []string{"experience", "overall"}},
}

// Extract returns one insight per topic plus the respondent count.
// A nil table yields placeholders for every topic. It never fails.
func Extract(table *schema.Table) schema.SurveySummary {
	summary := schema.SurveySummary{Insights: make([]schema.SurveyInsight, 0, len(Topics))}
	if table != nil {
		summary.Respondents = countRespondents(table)
	}

	for _, topic := range Topics {
		insight := schema.SurveyInsight{Topic: topic.Name, Question: schema.SurveyPlaceholder}
		if table != nil {
			if col := matchColumn(table.Headers, topic.Keywords); col >= 0 {
				insight.Question = strings.TrimSpace(table.Headers[col])
				insight.Quote = schema.Truncate(firstValue(table, col), QuoteLimit)
			}
		}
		summary.Insights = append(summary.Insights, insight)
	}
	return summary
}

// matchColumn returns the first header containing any keyword, or -1.
func matchColumn(headers []string, keywords []string) int {
	for i, h := range headers {
		lower := strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

func firstValue(table *schema.Table, col int) string {
	for i := range table.Rows {
		if v := load.CellString(table.Cell(i, col)); v != "" {
			return v
		}
	}
	return ""
}

func countRespondents(table *schema.Table) int {
	n := 0
	for _, row := range table.Rows {
		for _, v := range row {
			if load.CellString(v) != "" {
				n++
				break
			}
		}
	}
	return n
}
