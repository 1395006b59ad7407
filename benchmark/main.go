// Package main provides a performance benchmarking tool for the pilotkpi CLI.
// It generates synthetic activity exports of increasing size in CSV and XLSX,
// runs each command several times, treating the first successful run as cold
// and averaging the rest as warm, and writes the timings to a CSV file.
//
// Prerequisites:
// - pilotkpi binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated exports and dashboards
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// BenchmarkResult holds the result of a benchmark suite (cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset  string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir string
	Timeout time.Duration
	Runs    int
	Sizes   []int
	Formats []string
}

// Dataset is one generated export.
type Dataset struct {
	Name string
	Path string
}

var header = []string{"TicketKey", "CompletedDate", "AuthorUUID", "IsPilot", "FilesChanged", "LinesChanged", "QAChurnFiles"}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Runs:    5,
		Sizes:   []int{1_000, 10_000, 100_000},
		Formats: []string{"csv", "xlsx"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	datasets, err := generateDatasets(config)
	if err != nil {
		fmt.Printf("Failed to generate datasets: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, datasets)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the pilotkpi binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("pilotkpi"); err != nil {
		return fmt.Errorf("pilotkpi binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateDatasets writes one export per size and format
func generateDatasets(config BenchmarkConfig) ([]Dataset, error) {
	var datasets []Dataset
	for _, size := range config.Sizes {
		rows := syntheticRows(size)
		for _, format := range config.Formats {
			name := fmt.Sprintf("activity-%d.%s", size, format)
			path := filepath.Join(config.WorkDir, name)
			fmt.Printf("Generating %s\n", name)

			var err error
			switch format {
			case "csv":
				err = writeCSV(path, rows)
			case "xlsx":
				err = writeXLSX(path, rows)
			default:
				err = fmt.Errorf("unsupported format %s", format)
			}
			if err != nil {
				return nil, err
			}
			datasets = append(datasets, Dataset{Name: name, Path: path})
		}
	}
	return datasets, nil
}

// syntheticRows produces n activity rows spread over 16 weeks, with roughly
// three rows per ticket and a quarter of the tickets in the pilot cohort.
func syntheticRows(n int) [][]string {
	rng := rand.New(rand.NewPCG(42, uint64(n)))
	start := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	tickets := max(n/3, 1)

	rows := make([][]string, 0, n)
	for i := range n {
		ticket := rng.IntN(tickets)
		pilot := ticket%4 == 0
		author := fmt.Sprintf("dev-%02d", rng.IntN(18))
		if pilot {
			author = fmt.Sprintf("pilot-%d", rng.IntN(6))
		}
		completed := start.Add(time.Duration(ticket%112) * 24 * time.Hour).Add(time.Duration(i%8) * time.Hour)
		rows = append(rows, []string{
			fmt.Sprintf("BENCH-%06d", ticket),
			completed.Format(time.RFC3339),
			author,
			strconv.FormatBool(pilot),
			strconv.Itoa(1 + rng.IntN(30)),
			strconv.Itoa(1 + rng.IntN(1500)),
			strconv.Itoa(rng.IntN(3)),
		})
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}
	return file.Close()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Activity"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	toRow := func(values []string) []any {
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = v
		}
		return out
	}
	if err := sw.SetRow("A1", toRow(header)); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toRow(row)); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// runBenchmarks executes every command against every dataset
func runBenchmarks(config BenchmarkConfig, datasets []Dataset) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d runs\n",
		len(datasets), config.Timeout, config.Runs)

	for _, ds := range datasets {
		fmt.Printf("Benchmarking %s\n", ds.Name)

		summaryArgs := []string{"summary", ds.Path, "--format", "json", "--output-file", filepath.Join(config.WorkDir, "summary.json")}
		results = append(results, runBenchmarkSuite(config, ds, "summary", summaryArgs))

		exportArgs := []string{"export", ds.Path, "--output-file", filepath.Join(config.WorkDir, "export")}
		results = append(results, runBenchmarkSuite(config, ds, "export", exportArgs))

		buildArgs := []string{"build", ds.Path, "--output", filepath.Join(config.WorkDir, "dashboard.html")}
		results = append(results, runBenchmarkSuite(config, ds, "build", buildArgs))
	}

	return results
}

// runBenchmarkSuite runs one command several times and summarizes the timings
func runBenchmarkSuite(config BenchmarkConfig, ds Dataset, command string, args []string) BenchmarkResult {
	fmt.Printf("  %s (%d runs)\n", command, config.Runs)

	coldTime, warmTimes := runBenchmark(config, args)

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	warmAvg := "TIMEOUT"
	if len(warmTimes) > 0 {
		var sum float64
		for _, t := range warmTimes {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warmTimes)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:  ds.Name,
		Command:  command,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a pilotkpi command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, args []string) (coldTime float64, warmTimes []float64) {
	args = append(args, "--color", "no")

	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("pilotkpi", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks that a run wrote its output and did not fall back to the sample data
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "💾") && !strings.Contains(outputStr, "sample")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/pilotkpi_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "summary", "Summary:")
	printCommandSummary(results, "export", "Export:")
	printCommandSummary(results, "build", "Build:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-24s: Cold: %s, Warm: %s\n", result.Dataset, result.ColdTime, result.WarmTime)
		}
	}
}
