package source

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
	"github.com/xuri/excelize/v2"
)

// workbookSource reads sheets of an .xlsx workbook.
type workbookSource struct {
	path string
	file *excelize.File
}

var _ contract.RecordSource = &workbookSource{} // Compile-time check

func openWorkbook(path string) (*workbookSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook %s: %w", path, err)
	}
	return &workbookSource{path: path, file: f}, nil
}

func (w *workbookSource) Format() schema.SourceFormat { return schema.XLSXSource }

func (w *workbookSource) Path() string { return w.path }

func (w *workbookSource) Sheets(_ context.Context) ([]string, error) {
	return w.file.GetSheetList(), nil
}

// ReadTable reads raw cell values, so dates arrive as serial numbers rather
// than in the sheet's display format. Numeric and boolean cells are typed.
func (w *workbookSource) ReadTable(ctx context.Context, sheet string) (schema.Table, error) {
	if !slices.Contains(w.file.GetSheetList(), sheet) {
		return schema.Table{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := w.file.Rows(sheet)
	if err != nil {
		return schema.Table{}, fmt.Errorf("cannot read sheet %q of %s: %w", sheet, w.path, err)
	}
	defer func() { _ = rows.Close() }()

	table := schema.Table{Name: sheet}
	first := true
	rowNum := 0
	for rows.Next() {
		rowNum++
		if err := ctx.Err(); err != nil {
			return schema.Table{}, err
		}
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return schema.Table{}, fmt.Errorf("cannot read sheet %q of %s: %w", sheet, w.path, err)
		}
		if first {
			table.Headers = headerRow(cols)
			first = false
			continue
		}
		row := make([]any, len(cols))
		for i, v := range cols {
			row[i] = w.typedCell(sheet, i+1, rowNum, v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return schema.Table{}, fmt.Errorf("cannot read sheet %q of %s: %w", sheet, w.path, err)
	}
	return table, nil
}

// typedCell converts a raw value by the cell's stored type. Text cells,
// formulas and anything unparsable stay strings.
func (w *workbookSource) typedCell(sheet string, col, row int, raw string) any {
	if raw == "" {
		return raw
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := w.file.GetCellType(sheet, name)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE" || raw == "true"
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func (w *workbookSource) Close() error {
	return w.file.Close()
}
