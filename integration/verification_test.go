//go:build integration

// Package integration contains integration tests for pilotkpi.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"
)

// activityRow is one row of the generated activity export.
type activityRow struct {
	Ticket    string `parquet:"TicketKey"`
	Completed string `parquet:"CompletedDate"`
	Author    string `parquet:"AuthorUUID"`
	Pilot     bool   `parquet:"IsPilot"`
	Files     int64  `parquet:"FilesChanged"`
	Lines     int64  `parquet:"LinesChanged"`
	Churn     int64  `parquet:"QAChurnFiles"`
}

var header = []string{"TicketKey", "CompletedDate", "AuthorUUID", "IsPilot", "FilesChanged", "LinesChanged", "QAChurnFiles"}

// activityRows spans eight weeks around the pilot start with two rows per ticket.
func activityRows() []activityRow {
	start := time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)
	var rows []activityRow
	for week := range 8 {
		for n := range 9 {
			pilot := n < 3
			author := fmt.Sprintf("dev-%d", n%5)
			if pilot {
				author = fmt.Sprintf("pilot-%d", n%2)
			}
			id := fmt.Sprintf("INT-%02d%02d", week, n)
			day := start.AddDate(0, 0, 7*week+1+n%5).Add(10 * time.Hour)
			for part := range 2 {
				rows = append(rows, activityRow{
					Ticket:    id,
					Completed: day.Add(time.Duration(part) * time.Hour).Format(time.RFC3339),
					Author:    author,
					Pilot:     pilot,
					Files:     int64(1 + (week+n)%9),
					Lines:     int64(30 + 45*n),
					Churn:     int64((week + n + part) % 4 / 3),
				})
			}
		}
	}
	return rows
}

func (r activityRow) strings() []string {
	return []string{
		r.Ticket, r.Completed, r.Author, strconv.FormatBool(r.Pilot),
		strconv.FormatInt(r.Files, 10), strconv.FormatInt(r.Lines, 10), strconv.FormatInt(r.Churn, 10),
	}
}

func writeCSV(t *testing.T, path string, rows []activityRow) {
	t.Helper()
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	require.NoError(t, w.Write(header))
	for _, r := range rows {
		require.NoError(t, w.Write(r.strings()))
	}
	w.Flush()
	require.NoError(t, w.Error())
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
}

func writeXLSX(t *testing.T, path string, rows []activityRow) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	_, err := f.NewSheet("Activity")
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SetSheetRow("Activity", "A1", &header))
	for i, r := range rows {
		values := r.strings()
		require.NoError(t, f.SetSheetRow("Activity", fmt.Sprintf("A%d", i+2), &values))
	}
	require.NoError(t, f.SaveAs(path))
}

func writeSQLite(t *testing.T, path string, rows []activityRow) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE activity (
		TicketKey TEXT, CompletedDate TEXT, AuthorUUID TEXT, IsPilot INTEGER,
		FilesChanged INTEGER, LinesChanged INTEGER, QAChurnFiles INTEGER)`)
	require.NoError(t, err)
	for _, r := range rows {
		_, err = db.Exec(`INSERT INTO activity VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.Ticket, r.Completed, r.Author, r.Pilot, r.Files, r.Lines, r.Churn)
		require.NoError(t, err)
	}
}

func writeParquet(t *testing.T, path string, rows []activityRow) {
	t.Helper()
	require.NoError(t, parquet.WriteFile(path, rows))
}

// runCommand runs the binary in dir and returns stdout, stderr and the exit error.
func runCommand(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(t), append(args, "--color", "no")...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestSummaryMatchesAcrossFormats writes the same activity in every supported
// format and checks that the summaries are identical.
func TestSummaryMatchesAcrossFormats(t *testing.T) {
	dir := t.TempDir()
	rows := activityRows()

	writers := map[string]func(*testing.T, string, []activityRow){
		"activity.csv":     writeCSV,
		"activity.xlsx":    writeXLSX,
		"activity.db":      writeSQLite,
		"activity.parquet": writeParquet,
	}

	summaries := make(map[string]map[string]any)
	for name, write := range writers {
		path := filepath.Join(dir, name)
		write(t, path, rows)

		stdout, stderr, err := runCommand(t, dir, "summary", path, "--format", "json")
		require.NoError(t, err, stderr)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &decoded), name)
		summaries[name] = decoded
	}

	expected := summaries["activity.csv"]
	require.NotEmpty(t, expected["dataset_id"])
	assert.Len(t, expected["weeks"], 8)
	for name, got := range summaries {
		assert.Equal(t, expected, got, "summary mismatch for %s", name)
	}
}

// TestBuildWritesDashboard runs the full pipeline with discovery and archiving.
func TestBuildWritesDashboard(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "data"), 0o755))
	writeCSV(t, filepath.Join(dir, "data", "activity.csv"), activityRows())

	_, stderr, err := runCommand(t, dir, "build",
		"--archive-dir", "archive",
		"--payload-file", "dashboard-data.json",
		"--chart-lib", "missing.js")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "chart")

	html, err := os.ReadFile(filepath.Join(dir, "dashboard.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "const DATA = {")
	assert.NotContains(t, string(html), "/*__DASHBOARD_DATA__*/")

	archived, err := filepath.Glob(filepath.Join(dir, "archive", "dashboard-*.html"))
	require.NoError(t, err)
	assert.Len(t, archived, 1)

	payload, err := os.ReadFile(filepath.Join(dir, "dashboard-data.json"))
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"source": "computed"`)
}

// TestBuildFallsBackOnEmptyInput renders the sample dashboard without failing.
func TestBuildFallsBackOnEmptyInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(header, ",")+"\n"), 0o644))

	_, stderr, err := runCommand(t, dir, "build", path, "--payload-file", "data.json")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "sample")

	payload, err := os.ReadFile(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"sample_data": true`)
}

// TestExitStatus checks the fatal conditions.
func TestExitStatus(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := runCommand(t, dir, "build", "--data-dir", "nowhere")
	require.Error(t, err)
	assert.Contains(t, stderr, "Fatal")

	_, _, err = runCommand(t, dir, "summary", "--pilot-roster", "0")
	assert.Error(t, err)

	stdout, _, err := runCommand(t, dir, "config", "--pilot-roster", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pilot-roster: 3")
}
