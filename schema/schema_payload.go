package schema

// HeatMapCell is one (line bucket × file bucket) cell of the size/complexity heat map.
type HeatMapCell struct {
	Lines        string `json:"lines"`
	Files        string `json:"files"`
	Pilot        int    `json:"pilot"`
	NonPilot     int    `json:"nonpilot"`
	Differential int    `json:"diff"` // round((p - np) / (p + np) * 100), 0 when empty
	Label        string `json:"label"`
}

// HeatMap holds the nine heat map cells in row-major order (lines, then files).
type HeatMap struct {
	Rows  []string      `json:"rows"`
	Cols  []string      `json:"cols"`
	Cells []HeatMapCell `json:"cells"`
}

// KpiCard is one headline summary card.
type KpiCard struct {
	Key     CardKey `json:"key"`
	Label   string  `json:"label"`
	Value   string  `json:"value"`
	Delta   string  `json:"delta"`
	Context string  `json:"context"`
	Tone    Tone    `json:"tone"`
}

// SurveyInsight is the extracted answer for one survey topic.
type SurveyInsight struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
	Quote    string `json:"quote"`
}

// SurveySummary holds the survey insights shown on the dashboard.
type SurveySummary struct {
	Respondents int             `json:"respondents"`
	Insights    []SurveyInsight `json:"insights"`
}

// Roster holds the fixed cohort sizes.
type Roster struct {
	Pilot    int `json:"pilot"`
	NonPilot int `json:"nonpilot"`
}

// PayloadMeta is the run metadata block of the dashboard.
type PayloadMeta struct {
	Title           string     `json:"title"`
	DataStart       string     `json:"data_start"`
	DataEnd         string     `json:"data_end"`
	DataRange       string     `json:"data_range"`
	PilotStart      string     `json:"pilot_start"`
	Roster          Roster     `json:"roster"`
	WorkdaysPerWeek int        `json:"workdays_per_week"`
	RollingWindow   int        `json:"rolling_window"`
	MinTickets      int        `json:"min_tickets"`
	ValidWeeks      int        `json:"valid_weeks"`
	Generated       string     `json:"generated"`
	Source          ResultKind `json:"source"`
	SampleData      bool       `json:"sample_data"`
	DatasetID       string     `json:"dataset_id"`
}

// ProductivitySeries is the weekly productivity chart data. All slices are index-aligned with Labels.
type ProductivitySeries struct {
	Labels          []string      `json:"labels"`
	Weeks           []string      `json:"weeks"`
	Pilot           []float64     `json:"pilot"`
	NonPilot        []float64     `json:"nonpilot"`
	PilotRolling    []float64     `json:"pilot_rolling"`
	NonPilotRolling []float64     `json:"nonpilot_rolling"`
	PilotTickets    []int         `json:"pilot_tickets"`
	NonPilotTickets []int         `json:"nonpilot_tickets"`
	LowConfidence   []bool        `json:"low_confidence"`
	HolidayGap      []bool        `json:"holiday_gap"`
	PilotStartIndex int           `json:"pilot_start_index"` // -1 when the pilot starts after the last week
	Trailing        TrailingDelta `json:"trailing"`
}

// QAChurnSeries is the weekly QA churn chart data, aligned with the productivity labels.
type QAChurnSeries struct {
	Labels   []string  `json:"labels"`
	Pilot    []float64 `json:"pilot"`
	NonPilot []float64 `json:"nonpilot"`
}

// AvailabilitySeries is the weekly pilot headcount chart data.
type AvailabilitySeries struct {
	Labels  []string  `json:"labels"`
	Active  []int     `json:"active"`
	Percent []float64 `json:"pct"`
}

// CumulativeSeries is the running ticket output chart data.
type CumulativeSeries struct {
	Labels     []string  `json:"labels"`
	Pilot      []int     `json:"pilot"`
	NonPilot   []int     `json:"nonpilot"`
	Total      []int     `json:"total"`
	PilotShare []float64 `json:"pilot_share"`
}

// DashboardPayload is the complete document substituted into the HTML template.
type DashboardPayload struct {
	Meta         PayloadMeta         `json:"meta"`
	Cards        []KpiCard           `json:"cards"`
	Summary      PeriodSummary       `json:"summary"`
	Productivity ProductivitySeries  `json:"productivity"`
	QAChurn      QAChurnSeries       `json:"qa_churn"`
	Availability *AvailabilitySeries `json:"availability,omitempty"`
	Cumulative   *CumulativeSeries   `json:"cumulative,omitempty"`
	HeatMap      HeatMap             `json:"heatmap"`
	Methodology  string              `json:"methodology"`
	Survey       SurveySummary       `json:"survey"`
}

// Result is the outcome of a dashboard build: either a computed payload or the sample fallback.
type Result struct {
	Kind    ResultKind
	Payload DashboardPayload
	Reason  string // Why the fallback was chosen; empty for computed results
}

// IsFallback reports whether the payload is the sample substitute.
func (r Result) IsFallback() bool {
	return r.Kind == FallbackResult
}
