package source

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// sqliteSource reads tables of a SQLite database file.
type sqliteSource struct {
	path string
	db   *sql.DB
}

var _ contract.RecordSource = &sqliteSource{} // Compile-time check

func openSQLite(path string) (*sqliteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database at %q: %w", path, err)
	}
	// A single connection is enough for sequential reads
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open SQLite database at %q: %w", path, err)
	}
	return &sqliteSource{path: path, db: db}, nil
}

func (s *sqliteSource) Format() schema.SourceFormat { return schema.SQLiteSource }

func (s *sqliteSource) Path() string { return s.path }

// Sheets lists user tables and views by name.
func (s *sqliteSource) Sheets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReadTable selects every row of the table. BLOB and TEXT values become strings.
func (s *sqliteSource) ReadTable(ctx context.Context, sheet string) (schema.Table, error) {
	names, err := s.Sheets(ctx)
	if err != nil {
		return schema.Table{}, err
	}
	if !slices.Contains(names, sheet) {
		return schema.Table{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", quoteIdent(sheet)))
	if err != nil {
		return schema.Table{}, fmt.Errorf("failed to query table %q: %w", sheet, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return schema.Table{}, fmt.Errorf("failed to read columns of %q: %w", sheet, err)
	}

	table := schema.Table{Name: sheet, Headers: headerRow(columns)}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return schema.Table{}, fmt.Errorf("failed to scan row of %q: %w", sheet, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return schema.Table{}, fmt.Errorf("failed to read table %q: %w", sheet, err)
	}
	return table, nil
}

func (s *sqliteSource) Close() error {
	return s.db.Close()
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
