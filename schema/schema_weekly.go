package schema

import "time"

// WeeklyMetrics holds per-week ticket counts and productivity by cohort.
type WeeklyMetrics struct {
	Week                 time.Time `json:"week"`
	PilotTickets         int       `json:"pilot_tickets"`
	NonPilotTickets      int       `json:"nonpilot_tickets"`
	TotalTickets         int       `json:"total_tickets"`
	PilotProductivity    float64   `json:"pilot_productivity"`
	NonPilotProductivity float64   `json:"nonpilot_productivity"`
	LowConfidence        bool      `json:"low_confidence"`
	Holiday              bool      `json:"holiday"`
	ActivePilotAuthors   int       `json:"active_pilot_authors"`
}

// QaChurnWeekly holds per-week QA churn by cohort.
type QaChurnWeekly struct {
	Week            time.Time `json:"week"`
	PilotChurned    int       `json:"pilot_churned"`
	PilotTickets    int       `json:"pilot_tickets"`
	NonPilotChurned int       `json:"nonpilot_churned"`
	NonPilotTickets int       `json:"nonpilot_tickets"`
	PilotPercent    float64   `json:"pilot_pct"`
	NonPilotPercent float64   `json:"nonpilot_pct"`
}

// TrailingDelta is the pilot vs non-pilot productivity change over the last N weeks.
type TrailingDelta struct {
	Weeks   int     `json:"weeks"`
	Percent float64 `json:"pct"`
}

// PeriodSummary holds the KPIs computed over a designated window of weeks.
type PeriodSummary struct {
	Weeks                    int           `json:"weeks"`
	ValidWeeks               int           `json:"valid_weeks"`
	PilotTickets             int           `json:"pilot_tickets"`
	NonPilotTickets          int           `json:"nonpilot_tickets"`
	TotalTickets             int           `json:"total_tickets"`
	PilotAuthors             int           `json:"pilot_authors"`
	NonPilotAuthors          int           `json:"nonpilot_authors"`
	PilotProductivity        float64       `json:"pilot_productivity"`
	NonPilotProductivity     float64       `json:"nonpilot_productivity"`
	PilotProductivityStd     float64       `json:"pilot_productivity_std"`
	NonPilotProductivityStd  float64       `json:"nonpilot_productivity_std"`
	ProductivityMultiple     float64       `json:"productivity_multiple"`
	ProductivityDelta        float64       `json:"productivity_delta"`     // Pilot mean minus baseline
	ProductivityDeltaPercent float64       `json:"productivity_delta_pct"` // Relative to baseline
	PilotQAChurn             float64       `json:"pilot_qa_churn"`         // Percent
	NonPilotQAChurn          float64       `json:"nonpilot_qa_churn"`      // Percent
	QAChurnDelta             float64       `json:"qa_churn_delta"`         // Pilot churn minus baseline, in points
	QAChurnDeltaPercent      float64       `json:"qa_churn_delta_pct"`
	PilotShare               float64       `json:"pilot_share"`      // Fraction of ticket volume
	ValidWeekFraction        float64       `json:"valid_week_ratio"` // Weeks meeting the ticket threshold
	Availability             float64       `json:"availability"`     // Weeks with at least one pilot ticket
	AvailableWeeks           int           `json:"available_weeks"`
	Trailing                 TrailingDelta `json:"trailing"`
}
