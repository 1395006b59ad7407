// Package contract provides interfaces and shared utilities for the pilotkpi CLI's internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/pilotkpi/schema"
)

// RecordSource defines the operations needed to pull tabular activity data from
// a spreadsheet, flat file or database. This allows the pipeline to be tested
// without real files on disk.
type RecordSource interface {
	// Format returns the kind of source (csv, xlsx, parquet, sqlite...).
	Format() schema.SourceFormat

	// Path returns the location the source was opened from.
	Path() string

	// Sheets lists the sheet or table names available, in source order.
	// Single-table formats return exactly one name.
	Sheets(ctx context.Context) ([]string, error)

	// ReadTable reads one sheet or table in full.
	ReadTable(ctx context.Context, sheet string) (schema.Table, error)

	// Close releases any underlying file or database handle.
	Close() error
}
