package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/pilotkpi/internal/contract"
)

// writeWithFile opens the output (stdout when empty), runs the writer and
// reports where the result went.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	if outputFile != "" {
		if err := ensureParentDir(outputFile); err != nil {
			return err
		}
	}
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", outputFile, err)
	}
	if file == os.Stdout {
		return writer(file)
	}
	defer func() { _ = file.Close() }()

	if err := writer(file); err != nil {
		return err
	}
	// A failed close can lose buffered data
	if err := file.Close(); err != nil {
		return fmt.Errorf("cannot close %s: %w", outputFile, err)
	}

	contract.LogSuccess("%s to %s", successMsg, outputFile)
	return nil
}

// ensureParentDir creates the directory that will hold path.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// writeJSON encodes data with two-space indentation.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes the header, then lets writeRows fill in the data.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters returns the float and percent formatters shared by the text and CSV writers.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtPercent func(float64) string) {
	fmtFloat = func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	fmtPercent = func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	}
	return fmtFloat, fmtPercent
}

// flagLabel renders the per-week flags for tables.
func flagLabel(lowConfidence, holiday bool) string {
	switch {
	case lowConfidence && holiday:
		return "low, holiday"
	case lowConfidence:
		return "low"
	case holiday:
		return "holiday"
	default:
		return ""
	}
}
