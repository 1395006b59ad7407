package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/internal/parquet"
	"github.com/huangsam/pilotkpi/schema"
)

// parquetSource reads a flat Parquet file as a single table.
type parquetSource struct {
	path string
}

var _ contract.RecordSource = &parquetSource{} // Compile-time check

func newParquetSource(path string) *parquetSource {
	return &parquetSource{path: path}
}

func (p *parquetSource) Format() schema.SourceFormat { return schema.ParquetSource }

func (p *parquetSource) Path() string { return p.path }

func (p *parquetSource) Sheets(_ context.Context) ([]string, error) {
	return []string{p.sheetName()}, nil
}

func (p *parquetSource) sheetName() string {
	base := filepath.Base(p.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (p *parquetSource) ReadTable(ctx context.Context, sheet string) (schema.Table, error) {
	if sheet != p.sheetName() {
		return schema.Table{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	table, err := parquet.ReadTable(ctx, p.path)
	if err != nil {
		return schema.Table{}, fmt.Errorf("cannot read %s: %w", p.path, err)
	}
	table.Name = sheet
	return table, nil
}

func (p *parquetSource) Close() error { return nil }
