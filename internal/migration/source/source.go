// Package source abstracts the legacy workbook: each migration sees sheets
// of named-field rows and never touches the file format directly.
//
// Sheet names and column headers are a fixed external contract with the
// legacy export (e.g. SALES_OR, JOB_NUM, CLIENT_NO, DOORS_COMP); renaming
// either side breaks field mapping.
package source

import (
	"strings"

	"github.com/go-faster/errors"
)

// Row is one record keyed by column header. Values are untyped because the
// legacy cells are inconsistently typed; the normalize package owns coercion.
type Row map[string]any

// Get returns the cell for the given column, or nil when the column is
// missing or the row is short.
func (r Row) Get(col string) any {
	v, ok := r[col]
	if !ok {
		return nil
	}
	return v
}

// Sheet is a named sequence of rows.
type Sheet struct {
	Name string
	Rows []Row
}

// Workbook provides sheet access for one migration run.
type Workbook interface {
	Sheet(name string) (*Sheet, error)
	Close() error
}

// SheetFromRecords builds a sheet from a header row plus data rows. Short
// records leave trailing columns absent; extra cells beyond the header are
// dropped.
func SheetFromRecords(name string, header []string, records [][]any) *Sheet {
	trimmed := make([]string, len(header))
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(trimmed))
		for i, col := range trimmed {
			if col == "" || i >= len(rec) {
				continue
			}
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}
	return &Sheet{Name: name, Rows: rows}
}

// ErrNoSheet reports a workbook missing an expected sheet.
var ErrNoSheet = errors.New("sheet not found")
