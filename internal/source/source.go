// Package source opens tabular activity data from delimited files, workbooks,
// Parquet files and SQLite databases behind the contract.RecordSource interface.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
)

var (
	// ErrNoInput is returned when no supported input file can be located.
	ErrNoInput = errors.New("no input file found")

	// ErrSheetRequired is returned when a source has several sheets and none was selected.
	ErrSheetRequired = errors.New("sheet or table must be selected")

	// ErrUnsupported is returned for file extensions without a reader.
	ErrUnsupported = errors.New("unsupported input format")

	// ErrSheetNotFound is returned when the selected sheet does not exist.
	ErrSheetNotFound = errors.New("sheet or table not found")
)

// FormatOf returns the source format for a path based on its extension.
func FormatOf(path string) (schema.SourceFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := schema.SourceExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return format, nil
}

// Open returns a record source for the path, chosen by file extension.
func Open(path string) (contract.RecordSource, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open input %s: %w", path, err)
	}

	switch format {
	case schema.CSVSource:
		return newDelimited(path, format, ','), nil
	case schema.TSVSource:
		return newDelimited(path, format, '\t'), nil
	case schema.XLSXSource:
		return openWorkbook(path)
	case schema.ParquetSource:
		return newParquetSource(path), nil
	case schema.SQLiteSource:
		return openSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, format)
	}
}

// Discover returns the most recently modified file with a supported extension
// in dir. Subdirectories are not searched.
func Discover(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: directory %s does not exist", ErrNoInput, dir)
		}
		return "", fmt.Errorf("cannot list %s: %w", dir, err)
	}

	var newest string
	var newestInfo os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := FormatOf(entry.Name()); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// Ties are broken by name so discovery is stable.
		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) ||
			(info.ModTime().Equal(newestInfo.ModTime()) && entry.Name() > newestInfo.Name()) {
			newest, newestInfo = entry.Name(), info
		}
	}
	if newestInfo == nil {
		return "", fmt.Errorf("%w in %s", ErrNoInput, dir)
	}

	path := filepath.Join(dir, newest)
	slog.Debug("Discovered input file", "path", path, "modified", newestInfo.ModTime())
	return path, nil
}

// ResolveSheet picks the sheet to read: the explicit choice, else the
// configured one, else the only sheet when there is exactly one.
func ResolveSheet(explicit, configured string, sheets []string) (string, error) {
	for _, want := range []string{explicit, configured} {
		if want == "" {
			continue
		}
		for _, s := range sheets {
			if s == want {
				return s, nil
			}
		}
		return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, want, strings.Join(sheets, ", "))
	}
	if len(sheets) == 1 {
		return sheets[0], nil
	}
	return "", fmt.Errorf("%w: found %d (%s)", ErrSheetRequired, len(sheets), strings.Join(sheets, ", "))
}

// ReadSelected resolves the sheet and reads it.
func ReadSelected(ctx context.Context, src contract.RecordSource, explicit, configured string) (schema.Table, error) {
	sheets, err := src.Sheets(ctx)
	if err != nil {
		return schema.Table{}, fmt.Errorf("cannot list sheets of %s: %w", src.Path(), err)
	}
	sheet, err := ResolveSheet(explicit, configured, sheets)
	if err != nil {
		return schema.Table{}, fmt.Errorf("%s: %w", src.Path(), err)
	}
	table, err := src.ReadTable(ctx, sheet)
	if err != nil {
		return schema.Table{}, err
	}
	slog.Info("Read input table", "path", src.Path(), "format", src.Format(), "sheet", sheet, "rows", len(table.Rows))
	return table, nil
}

// Survey reads the optional survey table. A survey file takes precedence
// over a survey sheet in the main source. It returns nil when neither is set.
func Survey(ctx context.Context, main contract.RecordSource, surveySheet, surveyFile string) (*schema.Table, error) {
	switch {
	case surveyFile != "":
		src, err := Open(surveyFile)
		if err != nil {
			return nil, err
		}
		defer func() { _ = src.Close() }()
		table, err := ReadSelected(ctx, src, surveySheet, "")
		if errors.Is(err, ErrSheetRequired) || errors.Is(err, ErrSheetNotFound) {
			// Fall back to the first sheet of a separate survey file
			sheets, lerr := src.Sheets(ctx)
			if lerr != nil || len(sheets) == 0 {
				return nil, err
			}
			table, err = src.ReadTable(ctx, sheets[0])
		}
		if err != nil {
			return nil, err
		}
		return &table, nil
	case surveySheet != "" && main != nil:
		table, err := main.ReadTable(ctx, surveySheet)
		if err != nil {
			return nil, err
		}
		return &table, nil
	default:
		return nil, nil
	}
}

// headerRow converts the first row of a table into trimmed header names.
func headerRow(values []string) []string {
	headers := make([]string, len(values))
	for i, v := range values {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
	}
	return headers
}
