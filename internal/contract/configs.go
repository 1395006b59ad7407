package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/pilotkpi/schema"
)

// Default values for configuration.
const (
	DefaultTitle                = "AI-Assisted Development — Pilot KPIs"
	DefaultPilotRoster          = 6
	DefaultNonPilotRoster       = 18
	DefaultMinTickets           = 5
	DefaultRollingWindow        = 4
	DefaultTrailingWeeks        = 4
	DefaultTrendStart           = "2025-09-01"
	DefaultPilotStart           = "2025-12-01"
	DefaultBaselineProductivity = 0.15
	DefaultBaselineQAChurn      = 20.0
	DefaultDataDir              = "data"
	DefaultOutput               = "dashboard.html"
	DefaultChartLib             = "assets/chart.umd.min.js"
	DefaultChartCDN             = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"
)

// DateFormat is the layout for every date-valued configuration key.
const DateFormat = "2006-01-02"

// DefaultHolidays are the holiday weeks flagged on the productivity chart.
var DefaultHolidays = []string{"2025-11-23", "2025-12-21", "2025-12-28"}

// DefaultColumns is the ordered header preference list for each logical field.
var DefaultColumns = map[schema.LogicalField][]string{
	schema.FieldTicket:  {"TicketKey", "Ticket", "TicketID", "IssueKey"},
	schema.FieldDate:    {"CompletedDate", "MergedDate"},
	schema.FieldAuthor:  {"AuthorUUID", "Author", "AuthorEmail"},
	schema.FieldPilot:   {"IsPilot", "Pilot", "PilotFlag"},
	schema.FieldFiles:   {"FilesChanged", "PRFiles", "Files"},
	schema.FieldLines:   {"LinesChanged", "PRLines", "Lines"},
	schema.FieldQAChurn: {"QAChurnFiles", "QAChurnLines"},
}

var configValidator = validator.New()

// Config holds the runtime configuration for a dashboard build.
// This struct is the "final, validated" config.
type Config struct {
	Title          string `validate:"required"`
	PilotRoster    int    `validate:"gt=0"`
	NonPilotRoster int    `validate:"gt=0"`
	MinTickets     int    `validate:"gte=0"`
	RollingWindow  int    `validate:"gte=1,lte=52"`
	TrailingWeeks  int    `validate:"gte=1,lte=52"`

	TrendStart time.Time `validate:"required"`
	PilotStart time.Time `validate:"required,gtefield=TrendStart"`

	BaselineProductivity float64 `validate:"gte=0"`
	BaselineQAChurn      float64 `validate:"gte=0,lte=100"` // Percent

	// Holidays are Sunday-aligned week starts.
	Holidays []time.Time

	// Columns is the header preference list per logical field.
	Columns map[schema.LogicalField][]string `validate:"required"`

	InputPath   string
	DataDir     string
	Sheet       string
	SurveySheet string
	SurveyFile  string

	Output      string `validate:"required"`
	ArchiveDir  string
	PayloadFile string
	Template    string
	ChartLib    string
	ChartCDN    string `validate:"omitempty,url"`

	Format     schema.OutputMode
	OutputFile string

	UseColors bool
	Verbose   bool
}

// ColumnsRawInput holds the optional header preference overrides from the YAML config file.
type ColumnsRawInput struct {
	Ticket  []string `mapstructure:"ticket" yaml:"ticket,omitempty"`
	Date    []string `mapstructure:"date" yaml:"date,omitempty"`
	Author  []string `mapstructure:"author" yaml:"author,omitempty"`
	Pilot   []string `mapstructure:"pilot" yaml:"pilot,omitempty"`
	Files   []string `mapstructure:"files" yaml:"files,omitempty"`
	Lines   []string `mapstructure:"lines" yaml:"lines,omitempty"`
	QAChurn []string `mapstructure:"qa_churn" yaml:"qa_churn,omitempty"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPath string `yaml:"-"`

	// --- Metric settings, usually from the config file ---
	Title                string   `mapstructure:"title" yaml:"title"`
	PilotRoster          int      `mapstructure:"pilot-roster" yaml:"pilot-roster"`
	NonPilotRoster       int      `mapstructure:"non-pilot-roster" yaml:"non-pilot-roster"`
	MinTickets           int      `mapstructure:"min-tickets" yaml:"min-tickets"`
	RollingWindow        int      `mapstructure:"rolling-window" yaml:"rolling-window"`
	TrailingWeeks        int      `mapstructure:"trailing-weeks" yaml:"trailing-weeks"`
	TrendStart           string   `mapstructure:"trend-start" yaml:"trend-start"`
	PilotStart           string   `mapstructure:"pilot-start" yaml:"pilot-start"`
	BaselineProductivity float64  `mapstructure:"baseline-productivity" yaml:"baseline-productivity"`
	BaselineQAChurn      float64  `mapstructure:"baseline-qa-churn" yaml:"baseline-qa-churn"`
	Holidays             []string `mapstructure:"holidays" yaml:"holidays"`

	// --- Fields from rootCmd.PersistentFlags() ---
	DataDir     string `mapstructure:"data-dir" yaml:"data-dir"`
	Sheet       string `mapstructure:"sheet" yaml:"sheet,omitempty"`
	SurveySheet string `mapstructure:"survey-sheet" yaml:"survey-sheet,omitempty"`
	SurveyFile  string `mapstructure:"survey-file" yaml:"survey-file,omitempty"`
	Color       string `mapstructure:"color" yaml:"color"`
	Verbose     bool   `mapstructure:"verbose" yaml:"verbose"`

	// --- Fields from buildCmd.Flags() ---
	Output      string `mapstructure:"output" yaml:"output"`
	ArchiveDir  string `mapstructure:"archive-dir" yaml:"archive-dir,omitempty"`
	PayloadFile string `mapstructure:"payload-file" yaml:"payload-file,omitempty"`
	Template    string `mapstructure:"template" yaml:"template,omitempty"`
	ChartLib    string `mapstructure:"chart-lib" yaml:"chart-lib"`
	ChartCDN    string `mapstructure:"chart-cdn" yaml:"chart-cdn"`

	// --- Fields from summaryCmd.Flags() and exportCmd.Flags() ---
	Format     string `mapstructure:"format" yaml:"format,omitempty"`
	OutputFile string `mapstructure:"output-file" yaml:"output-file,omitempty"`

	// --- Column preference overrides from config file ---
	Columns ColumnsRawInput `mapstructure:"columns" yaml:"columns,omitempty"`
}

// DefaultConfig returns a validated Config populated with the built-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := ProcessAndValidate(cfg, DefaultRawInput()); err != nil {
		// The defaults are constants; a failure here is a programming error.
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

// DefaultRawInput returns the raw input equivalent of the built-in defaults.
func DefaultRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Title:                DefaultTitle,
		PilotRoster:          DefaultPilotRoster,
		NonPilotRoster:       DefaultNonPilotRoster,
		MinTickets:           DefaultMinTickets,
		RollingWindow:        DefaultRollingWindow,
		TrailingWeeks:        DefaultTrailingWeeks,
		TrendStart:           DefaultTrendStart,
		PilotStart:           DefaultPilotStart,
		BaselineProductivity: DefaultBaselineProductivity,
		BaselineQAChurn:      DefaultBaselineQAChurn,
		Holidays:             slices.Clone(DefaultHolidays),
		DataDir:              DefaultDataDir,
		Output:               DefaultOutput,
		ChartLib:             DefaultChartLib,
		ChartCDN:             DefaultChartCDN,
		Color:                "yes",
	}
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Holidays = slices.Clone(c.Holidays)
	if c.Columns != nil {
		clone.Columns = make(map[schema.LogicalField][]string, len(c.Columns))
		for field, names := range c.Columns {
			clone.Columns[field] = slices.Clone(names)
		}
	}
	return &clone
}

// RawInput converts the validated config back to its raw form, with every
// default and column preference spelled out. Feeding the result to
// ProcessAndValidate yields an equal Config.
func (c *Config) RawInput() *ConfigRawInput {
	color := "no"
	if c.UseColors {
		color = "yes"
	}
	holidays := make([]string, len(c.Holidays))
	for i, h := range c.Holidays {
		holidays[i] = h.Format(DateFormat)
	}
	return &ConfigRawInput{
		InputPath:            c.InputPath,
		Title:                c.Title,
		PilotRoster:          c.PilotRoster,
		NonPilotRoster:       c.NonPilotRoster,
		MinTickets:           c.MinTickets,
		RollingWindow:        c.RollingWindow,
		TrailingWeeks:        c.TrailingWeeks,
		TrendStart:           c.TrendStart.Format(DateFormat),
		PilotStart:           c.PilotStart.Format(DateFormat),
		BaselineProductivity: c.BaselineProductivity,
		BaselineQAChurn:      c.BaselineQAChurn,
		Holidays:             holidays,
		DataDir:              c.DataDir,
		Sheet:                c.Sheet,
		SurveySheet:          c.SurveySheet,
		SurveyFile:           c.SurveyFile,
		Color:                color,
		Verbose:              c.Verbose,
		Output:               c.Output,
		ArchiveDir:           c.ArchiveDir,
		PayloadFile:          c.PayloadFile,
		Template:             c.Template,
		ChartLib:             c.ChartLib,
		ChartCDN:             c.ChartCDN,
		Format:               string(c.Format),
		OutputFile:           c.OutputFile,
		Columns: ColumnsRawInput{
			Ticket:  slices.Clone(c.Columns[schema.FieldTicket]),
			Date:    slices.Clone(c.Columns[schema.FieldDate]),
			Author:  slices.Clone(c.Columns[schema.FieldAuthor]),
			Pilot:   slices.Clone(c.Columns[schema.FieldPilot]),
			Files:   slices.Clone(c.Columns[schema.FieldFiles]),
			Lines:   slices.Clone(c.Columns[schema.FieldLines]),
			QAChurn: slices.Clone(c.Columns[schema.FieldQAChurn]),
		},
	}
}

// IsHoliday reports whether the given week start is a configured holiday week.
func (c *Config) IsHoliday(week time.Time) bool {
	week = schema.WeekStart(week)
	for _, h := range c.Holidays {
		if h.Equal(week) {
			return true
		}
	}
	return false
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := processSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDates(cfg, input); err != nil {
		return err
	}
	processColumns(cfg, input)
	if err := configValidator.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// processSimpleInputs transfers and validates the non-date fields.
func processSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Title = strings.TrimSpace(input.Title)
	cfg.PilotRoster = input.PilotRoster
	cfg.NonPilotRoster = input.NonPilotRoster
	cfg.MinTickets = input.MinTickets
	cfg.RollingWindow = input.RollingWindow
	cfg.TrailingWeeks = input.TrailingWeeks
	cfg.BaselineProductivity = input.BaselineProductivity
	cfg.BaselineQAChurn = input.BaselineQAChurn

	cfg.InputPath = strings.TrimSpace(input.InputPath)
	cfg.DataDir = input.DataDir
	cfg.Sheet = strings.TrimSpace(input.Sheet)
	cfg.SurveySheet = strings.TrimSpace(input.SurveySheet)
	cfg.SurveyFile = strings.TrimSpace(input.SurveyFile)
	cfg.Output = input.Output
	cfg.ArchiveDir = input.ArchiveDir
	cfg.PayloadFile = input.PayloadFile
	cfg.Template = input.Template
	cfg.ChartLib = input.ChartLib
	cfg.ChartCDN = input.ChartCDN
	cfg.OutputFile = input.OutputFile
	cfg.Verbose = input.Verbose

	// Format is validated per command because the allowed set differs
	cfg.Format = schema.OutputMode(strings.ToLower(strings.TrimSpace(input.Format)))

	color := input.Color
	if color == "" {
		color = "yes"
	}
	colors, err := ParseBoolString(color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	return nil
}

// processDates parses the trend/pilot floors and aligns holidays to week starts.
func processDates(cfg *Config, input *ConfigRawInput) error {
	trend, err := parseConfigDate("trend-start", input.TrendStart)
	if err != nil {
		return err
	}
	pilot, err := parseConfigDate("pilot-start", input.PilotStart)
	if err != nil {
		return err
	}
	if pilot.Before(trend) {
		return fmt.Errorf("pilot-start (%s) cannot be before trend-start (%s)", input.PilotStart, input.TrendStart)
	}
	cfg.TrendStart = trend
	cfg.PilotStart = pilot

	cfg.Holidays = cfg.Holidays[:0]
	for _, raw := range input.Holidays {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		day, err := parseConfigDate("holidays", raw)
		if err != nil {
			return err
		}
		week := schema.WeekStart(day)
		if !slices.ContainsFunc(cfg.Holidays, week.Equal) {
			cfg.Holidays = append(cfg.Holidays, week)
		}
	}
	slices.SortFunc(cfg.Holidays, func(a, b time.Time) int { return a.Compare(b) })
	return nil
}

// processColumns merges the configured header preferences over the defaults.
func processColumns(cfg *Config, input *ConfigRawInput) {
	overrides := map[schema.LogicalField][]string{
		schema.FieldTicket:  input.Columns.Ticket,
		schema.FieldDate:    input.Columns.Date,
		schema.FieldAuthor:  input.Columns.Author,
		schema.FieldPilot:   input.Columns.Pilot,
		schema.FieldFiles:   input.Columns.Files,
		schema.FieldLines:   input.Columns.Lines,
		schema.FieldQAChurn: input.Columns.QAChurn,
	}
	cfg.Columns = make(map[schema.LogicalField][]string, len(schema.AllLogicalFields))
	for _, field := range schema.AllLogicalFields {
		names := cleanNames(overrides[field])
		if len(names) == 0 {
			names = slices.Clone(DefaultColumns[field])
		}
		cfg.Columns[field] = names
	}
}

func cleanNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func parseConfigDate(key, value string) (time.Time, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q, expected YYYY-MM-DD: %w", key, value, err)
	}
	return t, nil
}

// ValidateFormat checks that the configured format is one of the allowed modes,
// falling back to def when no format was given.
func (c *Config) ValidateFormat(allowed map[schema.OutputMode]struct{}, def schema.OutputMode) error {
	if c.Format == "" {
		c.Format = def
	}
	if _, ok := allowed[c.Format]; !ok {
		names := make([]string, 0, len(allowed))
		for m := range allowed {
			names = append(names, string(m))
		}
		slices.Sort(names)
		return fmt.Errorf("invalid format '%s'. must be %s", c.Format, strings.Join(names, ", "))
	}
	return nil
}
