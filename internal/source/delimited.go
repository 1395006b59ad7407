package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
)

// delimitedSource reads a CSV or TSV file with a header row.
type delimitedSource struct {
	path   string
	format schema.SourceFormat
	comma  rune
}

var _ contract.RecordSource = &delimitedSource{} // Compile-time check

func newDelimited(path string, format schema.SourceFormat, comma rune) *delimitedSource {
	return &delimitedSource{path: path, format: format, comma: comma}
}

func (d *delimitedSource) Format() schema.SourceFormat { return d.format }

func (d *delimitedSource) Path() string { return d.path }

// Sheets returns the file's base name as its only sheet.
func (d *delimitedSource) Sheets(_ context.Context) ([]string, error) {
	return []string{d.sheetName()}, nil
}

func (d *delimitedSource) sheetName() string {
	base := filepath.Base(d.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadTable reads the whole file. Every cell is a string.
func (d *delimitedSource) ReadTable(ctx context.Context, sheet string) (schema.Table, error) {
	if sheet != d.sheetName() {
		return schema.Table{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	f, err := os.Open(d.path)
	if err != nil {
		return schema.Table{}, fmt.Errorf("cannot open %s: %w", d.path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = d.comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false

	table := schema.Table{Name: sheet}
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return table, nil
	}
	if err != nil {
		return schema.Table{}, fmt.Errorf("cannot read header of %s: %w", d.path, err)
	}
	table.Headers = headerRow(header)

	for {
		if err := ctx.Err(); err != nil {
			return schema.Table{}, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return schema.Table{}, fmt.Errorf("cannot read %s: %w", d.path, err)
		}
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func (d *delimitedSource) Close() error { return nil }
