package source

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/oakridge-cabinets/migrate/internal/migration/normalize"
)

func TestSheetFromRecords(t *testing.T) {
	sheet := SheetFromRecords("SalesOrders",
		[]string{" SALES_OR ", "JOB_NUM", ""},
		[][]any{
			{"10020", "12345-S1", "ignored"},
			{"10021"},
		},
	)

	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "10020", sheet.Rows[0].Get("SALES_OR"))
	assert.Equal(t, "12345-S1", sheet.Rows[0].Get("JOB_NUM"))
	// short record leaves the column absent
	assert.Nil(t, sheet.Rows[1].Get("JOB_NUM"))
	// unknown column is nil, not a panic
	assert.Nil(t, sheet.Rows[0].Get("CLIENT_NO"))
}

func TestOpenWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("Clients")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Clients", "A1", &[]any{"CLIENT_ID", "LAST_NAME"}))
	require.NoError(t, f.SetSheetRow("Clients", "A2", &[]any{"C-100", "Miller"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	sheet, err := wb.Sheet("Clients")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "C-100", sheet.Rows[0].Get("CLIENT_ID"))
	assert.Equal(t, "Miller", sheet.Rows[0].Get("LAST_NAME"))

	_, err = wb.Sheet("Nope")
	assert.ErrorIs(t, err, ErrNoSheet)
}

// Date-typed cells must come out as time.Time, not as whatever display
// format their style renders (a US short-date style would yield "03-15-21",
// which the day-first cleaning policy cannot parse).
func TestSheetDateCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.xlsx")
	shipped := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)

	f := excelize.NewFile()
	_, err := f.NewSheet("SalesOrders")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("SalesOrders", "A1", &[]any{"SALES_OR", "DATE_SHIP", "TOTAL"}))
	require.NoError(t, f.SetSheetRow("SalesOrders", "A2", &[]any{"10020", shipped, 12500.0}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	sheet, err := wb.Sheet("SalesOrders")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)

	got, ok := sheet.Rows[0].Get("DATE_SHIP").(time.Time)
	require.True(t, ok, "date cell should be typed, got %T", sheet.Rows[0].Get("DATE_SHIP"))
	assert.Equal(t, 2021, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 15, got.Day())

	// and the typed value survives the cleaning policy
	cleaned := normalize.Date(sheet.Rows[0].Get("DATE_SHIP"))
	require.NotNil(t, cleaned)
	assert.Equal(t, 15, cleaned.Day())

	// plain numeric cells stay raw strings; identifiers and money keep
	// their serial form
	assert.Equal(t, "12500", sheet.Rows[0].Get("TOTAL"))
}

func TestIsDateNumFmt(t *testing.T) {
	custom := func(s string) *string { return &s }

	assert.True(t, isDateNumFmt(14, nil))  // m/d/yy
	assert.True(t, isDateNumFmt(22, nil))  // m/d/yy h:mm
	assert.False(t, isDateNumFmt(0, nil))  // General
	assert.False(t, isDateNumFmt(44, nil)) // accounting

	assert.True(t, isDateNumFmt(164, custom("dd/mm/yyyy")))
	assert.True(t, isDateNumFmt(164, custom(`[$-409]d-mmm-yy`)))
	assert.False(t, isDateNumFmt(164, custom("#,##0.00")))
	// date letters inside quoted literals do not make a date format
	assert.False(t, isDateNumFmt(164, custom(`0.00" yds"`)))
}
