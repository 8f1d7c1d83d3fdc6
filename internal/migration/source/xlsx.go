package source

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

type xlsxWorkbook struct {
	file *excelize.File
	// dateStyles caches per style index whether the number format is a
	// date; a workbook reuses a handful of styles across thousands of cells.
	dateStyles map[int]bool
}

// OpenWorkbook opens an Excel workbook for reading.
func OpenWorkbook(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	return &xlsxWorkbook{file: f, dateStyles: map[int]bool{}}, nil
}

// Sheet reads raw cell values and converts date-styled serials to
// time.Time. Formatted reads would render date cells in whatever display
// format the sheet author picked (e.g. "03-15-21"), losing the typed value.
func (w *xlsxWorkbook) Sheet(name string) (*Sheet, error) {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return nil, errors.Wrapf(err, "sheet %s", name)
	}
	if idx < 0 {
		return nil, errors.Wrapf(ErrNoSheet, "sheet %s", name)
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", name)
	}
	if len(rows) == 0 {
		return &Sheet{Name: name}, nil
	}

	records := make([][]any, len(rows)-1)
	for r, rec := range rows[1:] {
		cells := make([]any, len(rec))
		for c, raw := range rec {
			cells[c] = w.cellValue(name, r+2, c+1, raw)
		}
		records[r] = cells
	}
	return SheetFromRecords(name, rows[0], records), nil
}

// cellValue turns a date-styled serial into time.Time and leaves every
// other cell as its raw string.
func (w *xlsxWorkbook) cellValue(sheet string, row, col int, raw string) any {
	if raw == "" {
		return raw
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	styleID, err := w.file.GetCellStyle(sheet, ref)
	if err != nil || !w.isDateStyle(styleID) {
		return raw
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t
}

func (w *xlsxWorkbook) isDateStyle(styleID int) bool {
	if isDate, ok := w.dateStyles[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := w.file.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	w.dateStyles[styleID] = isDate
	return isDate
}

// isDateNumFmt reports whether a number format renders serials as dates.
// Builtin IDs follow the ECMA-376 table; custom codes count as dates when
// date tokens remain after quoted literals and bracketed sections are
// stripped.
func isDateNumFmt(id int, custom *string) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58,
		id >= 71 && id <= 81:
		return true
	}
	if custom == nil {
		return false
	}
	code := stripFmtSections(stripFmtSections(*custom, '"', '"'), '[', ']')
	return strings.ContainsAny(code, "ymdhsYMDHS")
}

func stripFmtSections(code string, open, end byte) string {
	for {
		i := strings.IndexByte(code, open)
		if i < 0 {
			return code
		}
		j := strings.IndexByte(code[i+1:], end)
		if j < 0 {
			return code[:i]
		}
		code = code[:i] + code[i+j+2:]
	}
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}
