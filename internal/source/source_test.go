package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/pilotkpi/core/load"
	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/internal/parquet"
	"github.com/huangsam/pilotkpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want schema.SourceFormat
		err  bool
	}{
		{"a.csv", schema.CSVSource, false},
		{"a.TSV", schema.TSVSource, false},
		{"dir/a.xlsx", schema.XLSXSource, false},
		{"a.parquet", schema.ParquetSource, false},
		{"a.sqlite3", schema.SQLiteSource, false},
		{"a.db", schema.SQLiteSource, false},
		{"a.json", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDelimitedSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("csv with BOM and ragged rows", func(t *testing.T) {
		path := writeFile(t, dir, "activity.csv", "\ufeffTicket, Date \nPROJ-1,2025-12-01\nPROJ-2\n")
		src, err := Open(path)
		require.NoError(t, err)
		defer func() { _ = src.Close() }()

		assert.Equal(t, schema.CSVSource, src.Format())
		table, err := ReadSelected(ctx, src, "", "")
		require.NoError(t, err)
		assert.Equal(t, "activity", table.Name)
		assert.Equal(t, []string{"Ticket", "Date"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "2025-12-01", table.Cell(0, 1))
		assert.Nil(t, table.Cell(1, 1))
	})

	t.Run("tsv", func(t *testing.T) {
		path := writeFile(t, dir, "activity.tsv", "Ticket\tPilot\nPROJ-1\tyes\n")
		src, err := Open(path)
		require.NoError(t, err)
		table, err := ReadSelected(ctx, src, "", "")
		require.NoError(t, err)
		assert.Equal(t, "yes", table.Cell(0, 1))
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.csv", "")
		src, err := Open(path)
		require.NoError(t, err)
		table, err := ReadSelected(ctx, src, "", "")
		require.NoError(t, err)
		assert.Empty(t, table.Headers)
		assert.Empty(t, table.Rows)
	})

	t.Run("wrong sheet", func(t *testing.T) {
		path := writeFile(t, dir, "named.csv", "Ticket\nA\n")
		src, err := Open(path)
		require.NoError(t, err)
		_, err = ReadSelected(ctx, src, "Other", "")
		assert.ErrorIs(t, err, ErrSheetNotFound)
	})
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	_, err := Discover(dir)
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = Discover(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNoInput)

	old := writeFile(t, dir, "old.csv", "Ticket\n")
	newer := writeFile(t, dir, "newer.tsv", "Ticket\n")
	ignored := writeFile(t, dir, "notes.txt", "hello")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	base := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(old, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(time.Hour), base.Add(time.Hour)))
	require.NoError(t, os.Chtimes(ignored, base.Add(2*time.Hour), base.Add(2*time.Hour)))

	got, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, got)
}

func TestResolveSheet(t *testing.T) {
	tests := []struct {
		name       string
		explicit   string
		configured string
		sheets     []string
		want       string
		wantErr    error
	}{
		{"explicit wins", "B", "A", []string{"A", "B"}, "B", nil},
		{"configured", "", "A", []string{"A", "B"}, "A", nil},
		{"only sheet", "", "", []string{"Data"}, "Data", nil},
		{"ambiguous", "", "", []string{"A", "B"}, "", ErrSheetRequired},
		{"no sheets", "", "", nil, "", ErrSheetRequired},
		{"explicit missing", "C", "", []string{"A"}, "", ErrSheetNotFound},
		{"configured missing", "", "C", []string{"A"}, "", ErrSheetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSheet(tt.explicit, tt.configured, tt.sheets)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkbookSource(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "activity.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Activity"))
	_, err := f.NewSheet("Survey")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Activity", "A1", &[]any{"Ticket", "Date", "Pilot", "Lines"}))
	require.NoError(t, f.SetSheetRow("Activity", "A2", &[]any{"PROJ-1", 45992, true, 120}))
	require.NoError(t, f.SetSheetRow("Survey", "A1", &[]any{"Overall experience"}))
	require.NoError(t, f.SetSheetRow("Survey", "A2", &[]any{"Great"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	sheets, err := src.Sheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Activity", "Survey"}, sheets)

	_, err = ReadSelected(ctx, src, "", "")
	assert.ErrorIs(t, err, ErrSheetRequired)

	table, err := ReadSelected(ctx, src, "", "Activity")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ticket", "Date", "Pilot", "Lines"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "PROJ-1", table.Cell(0, 0))
	assert.Equal(t, float64(45992), table.Cell(0, 1))
	assert.Equal(t, true, table.Cell(0, 2))
	assert.Equal(t, float64(120), table.Cell(0, 3))

	survey, err := Survey(ctx, src, "Survey", "")
	require.NoError(t, err)
	require.NotNil(t, survey)
	assert.Equal(t, "Great", survey.Cell(0, 0))
}

func TestWorkbookPilotFlags(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flags.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Activity"))
	require.NoError(t, f.SetSheetRow("Activity", "A1", &[]any{"TicketKey", "CompletedDate", "IsPilot"}))
	rows := [][]any{
		{"T-1", "2025-12-08", 2},
		{"T-2", "2025-12-08", 1.5},
		{"T-3", "2025-12-08", 1},
		{"T-4", "2025-12-08", 0},
		{"T-5", "2025-12-08", "1.0"},
		{"T-6", "2025-12-08", false},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Activity", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	table, err := ReadSelected(ctx, src, "", "")
	require.NoError(t, err)
	set, err := load.Records(table, contract.DefaultColumns)
	require.NoError(t, err)

	got := make(map[string]bool, len(set.Records))
	for _, r := range set.Records {
		got[r.TicketID] = r.Pilot
	}
	assert.Equal(t, map[string]bool{
		"T-1": true, "T-2": true, "T-3": true,
		"T-4": false, "T-5": true, "T-6": false,
	}, got)
}

func TestSQLiteSource(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "activity.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE activity (ticket TEXT, date TEXT, pilot INTEGER, lines INTEGER, note BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO activity VALUES ('PROJ-1', '2025-12-01', 1, 120, x'6869'), ('PROJ-2', '2025-12-02', 0, NULL, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()
	assert.Equal(t, schema.SQLiteSource, src.Format())

	table, err := ReadSelected(ctx, src, "", "")
	require.NoError(t, err)
	assert.Equal(t, "activity", table.Name)
	assert.Equal(t, []string{"ticket", "date", "pilot", "lines", "note"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "PROJ-1", table.Cell(0, 0))
	assert.Equal(t, int64(1), table.Cell(0, 2))
	assert.Equal(t, "hi", table.Cell(0, 4))
	assert.Nil(t, table.Cell(1, 3))

	_, err = src.ReadTable(ctx, `missing"; DROP TABLE activity; --`)
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestSQLiteSourceCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE a (ticket TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Sheets(ctx)
	assert.Error(t, err)
}

func TestParquetSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.parquet")
	require.NoError(t, parquet.WriteTicketsParquet([]parquet.TicketRow{
		{TicketID: "PROJ-1", Week: "2025-12-07", Pilot: true},
	}, path))

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	table, err := ReadSelected(context.Background(), src, "", "")
	require.NoError(t, err)
	assert.Equal(t, "tickets", table.Name)
	require.Len(t, table.Rows, 1)
}

func TestSurveyFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "survey.csv", "Overall experience\nGood\n")

	table, err := Survey(ctx, nil, "", path)
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Equal(t, "Good", table.Cell(0, 0))

	none, err := Survey(ctx, nil, "", "")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = Survey(ctx, nil, "", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
