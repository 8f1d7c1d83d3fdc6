package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-cabinets/migrate/internal/migration/source"
)

func TestBuildServiceOrder(t *testing.T) {
	jobs := map[string]int64{"10020": 55}

	order, err := BuildServiceOrder(source.Row{
		"SO_NO":     "301.0",
		"SALES_OR":  "10020.0",
		"DATE_COMP": "",
		"COMPLETE":  "Y",
		"SER_TYPE":  "Adjustment",
		"CHARGEBLE": "N",
	}, []source.Row{
		{"PART_NO": "HNG-12", "COMMENT": `left door\nrubs`, "QTY": "2.0", "HOURS": "1.5"},
		{"PART_NO": "", "COMMENT": "", "QTY": "5"}, // empty line, dropped
		{"COMMENT": "touch-up paint", "HOURS": "0.5"},
	}, jobs)
	require.NoError(t, err)

	assert.Equal(t, int64(55), order.JobID)
	assert.Equal(t, "301", order.Number)
	// completion flag resolves to the sentinel date
	require.NotNil(t, order.CompletedAt)
	assert.Equal(t, 1999, order.CompletedAt.Year())
	// no DATE_ENTER, so the sentinel stands in
	assert.Equal(t, 1999, order.DateEntered.Year())
	require.NotNil(t, order.Chargeable)
	assert.False(t, *order.Chargeable)
	assert.False(t, order.IsWarranty)

	require.NotNil(t, order.HoursEstimated)
	assert.Equal(t, 2, *order.HoursEstimated)

	require.Len(t, order.Parts, 2)
	assert.Equal(t, 2, order.Parts[0].Qty)
	assert.Equal(t, "HNG-12", order.Parts[0].Part)
	require.NotNil(t, order.Parts[0].Description)
	assert.Equal(t, "left door\nrubs", *order.Parts[0].Description)
	// part with no part number gets the placeholder
	assert.Equal(t, "-", order.Parts[1].Part)
	assert.Equal(t, 1, order.Parts[1].Qty)
}

func TestBuildServiceOrder_NoJobSkips(t *testing.T) {
	_, err := BuildServiceOrder(source.Row{
		"SO_NO":    "302",
		"SALES_OR": "99999",
	}, nil, map[string]int64{"10020": 55})
	assert.ErrorIs(t, err, ErrNoJob)
}

func TestBuildServiceOrder_NoNumberDropped(t *testing.T) {
	_, err := BuildServiceOrder(source.Row{"SALES_OR": "10020"}, nil, map[string]int64{"10020": 55})
	assert.ErrorIs(t, err, ErrNoNumber)
}

func TestBuildServiceOrder_ZeroHoursIsAbsent(t *testing.T) {
	order, err := BuildServiceOrder(source.Row{
		"SO_NO":    "303",
		"SALES_OR": "10020",
	}, []source.Row{{"PART_NO": "X"}}, map[string]int64{"10020": 55})
	require.NoError(t, err)
	assert.Nil(t, order.HoursEstimated)
}
