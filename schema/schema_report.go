package schema

// SummaryReport is what the summary command prints: the weekly series over
// the trend period plus the KPIs of the pilot period.
type SummaryReport struct {
	Title      string          `json:"title"`
	DataRange  string          `json:"data_range"`
	PilotStart string          `json:"pilot_start"`
	DatasetID  string          `json:"dataset_id"`
	Weeks      []WeeklyMetrics `json:"weeks"`
	QAChurn    []QaChurnWeekly `json:"qa_churn"`
	Summary    PeriodSummary   `json:"summary"`
	Cards      []KpiCard       `json:"cards"`
	Stats      AggregateStats  `json:"-"`
}

// ExportBundle holds the tables written by the export command.
type ExportBundle struct {
	Tickets []AggregatedTicket
	Weeks   []WeeklyMetrics
	QAChurn []QaChurnWeekly
}
