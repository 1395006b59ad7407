package schema

// Custom string types for type safety.
type (
	// LogicalField names a column the loader knows how to read.
	LogicalField string

	// OutputMode represents the format of the output.
	OutputMode string

	// SourceFormat represents the kind of tabular input.
	SourceFormat string

	// ResultKind tells whether a payload was computed or substituted.
	ResultKind string

	// CardKey identifies one of the KPI summary cards.
	CardKey string

	// Tone is the accent hint for a KPI card.
	Tone string
)

// Logical fields read by the loader.
const (
	FieldTicket  LogicalField = "ticket"
	FieldDate    LogicalField = "date"
	FieldAuthor  LogicalField = "author"
	FieldPilot   LogicalField = "pilot"
	FieldFiles   LogicalField = "files"
	FieldLines   LogicalField = "lines"
	FieldQAChurn LogicalField = "qa_churn"
)

// AllLogicalFields lists logical fields in resolution order.
var AllLogicalFields = []LogicalField{FieldTicket, FieldDate, FieldAuthor, FieldPilot, FieldFiles, FieldLines, FieldQAChurn}

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All source formats supported.
const (
	CSVSource     SourceFormat = "csv"
	TSVSource     SourceFormat = "tsv"
	XLSXSource    SourceFormat = "xlsx"
	ParquetSource SourceFormat = "parquet"
	SQLiteSource  SourceFormat = "sqlite"
)

// Result kinds.
const (
	ComputedResult ResultKind = "computed"
	FallbackResult ResultKind = "fallback"
)

// KPI card keys, in display order.
const (
	CardPilotProductivity CardKey = "pilot_productivity"
	CardMultiple          CardKey = "productivity_multiple"
	CardPilotQAChurn      CardKey = "pilot_qa_churn"
	CardOutputShare       CardKey = "pilot_output_share"
	CardAvailability      CardKey = "availability"
)

// Card tones.
const (
	TonePositive Tone = "positive"
	ToneWarning  Tone = "warning"
	ToneNeutral  Tone = "neutral"
)

// WorkdaysPerWeek is the fixed number of working days in a productivity denominator.
const WorkdaysPerWeek = 5

// Sentinel totals used when the source has no files or lines column at all.
const (
	DefaultFilesChanged = 1
	DefaultLinesChanged = 100
)

// Heat map bucket labels.
var (
	LineBuckets = []string{"0-300", "301-1000", "1001+"}
	FileBuckets = []string{"1-3", "4-10", "11+"}
)

// SurveyPlaceholder is shown when no survey answer is available for a topic.
const SurveyPlaceholder = "—"

// ValidSummaryModes lists valid output modes for the summary command.
var ValidSummaryModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidExportModes lists valid output modes for the export command.
var ValidExportModes = map[OutputMode]struct{}{
	CSVOut:     {},
	ParquetOut: {},
}

// SourceExtensions maps file extensions to source formats.
var SourceExtensions = map[string]SourceFormat{
	".csv":     CSVSource,
	".tsv":     TSVSource,
	".xlsx":    XLSXSource,
	".parquet": ParquetSource,
	".db":      SQLiteSource,
	".sqlite":  SQLiteSource,
	".sqlite3": SQLiteSource,
}
