package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakridge-cabinets/migrate/internal/migration/source"
)

func TestIndexBySalesOrder(t *testing.T) {
	sheet := &source.Sheet{Rows: []source.Row{
		{"SALES_OR": " 10020 ", "LAYOUT": "first"},
		{"SALES_OR": "10020", "LAYOUT": "duplicate"},
		{"SALES_OR": "nan"},
		{"LAYOUT": "no key"},
		{"SALES_OR": "10021", "LAYOUT": "other"},
	}}

	idx := indexBySalesOrder(sheet)
	assert.Len(t, idx, 2)
	assert.Equal(t, "first", idx["10020"].Get("LAYOUT"))
	assert.Equal(t, "other", idx["10021"].Get("LAYOUT"))
}

func TestGroupPartsByOrder(t *testing.T) {
	sheet := &source.Sheet{Rows: []source.Row{
		{"SO_NO": "301.0", "PART_NO": "H-1"},
		{"SO_NO": "301", "PART_NO": "H-2"},
		{"SO_NO": "302", "PART_NO": "D-1"},
		{"PART_NO": "orphan"},
	}}

	groups := groupPartsByOrder(sheet)
	assert.Len(t, groups, 2)
	assert.Len(t, groups["301"], 2)
	assert.Len(t, groups["302"], 1)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Equal(t, exitDB, exitCode(withCode(exitDB, errors.New("connect"))))

	wrapped := withCode(exitDBWrite, errors.New("insert"))
	assert.EqualError(t, wrapped, "insert")
}
