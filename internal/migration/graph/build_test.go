package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-cabinets/migrate/internal/migration/lookup"
	"github.com/oakridge-cabinets/migrate/internal/migration/source"
)

func testMaps() *lookup.Maps {
	return &lookup.Maps{
		Clients:    map[string]int64{"C-100": 1, "C-200": 2},
		Species:    map[string]int64{"Maple": 10},
		Colors:     map[string]int64{"Espresso": 20},
		DoorStyles: map[string]int64{"Shaker": 30},
		Installers: map[string]int64{"INST-1": 40},
		Jobs:       map[string]int64{},
	}
}

func TestBuild_JobPromotesQuoteToSold(t *testing.T) {
	b, err := Build(source.Row{
		"SALES_OR":  "10020",
		"CLIENT_NO": "C-100",
		"JOB_NUM":   "12345-S1",
		"STAGE":     "quote",
	}, nil, nil, testMaps())
	require.NoError(t, err)

	assert.Equal(t, StageSold, b.SalesOrder.Stage)
	require.True(t, b.HasJob())
	assert.Equal(t, "12345", b.Job.BaseNumber)
	require.NotNil(t, b.Job.Suffix)
	assert.Equal(t, "S1", *b.Job.Suffix)
	assert.True(t, b.Job.IsActive)
	require.NotNil(t, b.Production)
	require.NotNil(t, b.Installation)
	require.NotNil(t, b.Purchase)
}

func TestBuild_NoJobNumberForcesQuote(t *testing.T) {
	for _, stage := range []string{"SOLD", "quote", "anything", ""} {
		b, err := Build(source.Row{
			"SALES_OR":  "10021",
			"CLIENT_NO": "C-100",
			"STAGE":     stage,
		}, nil, nil, testMaps())
		require.NoError(t, err)

		assert.Equal(t, StageQuote, b.SalesOrder.Stage, "stage %q", stage)
		assert.False(t, b.HasJob())
		assert.Nil(t, b.Production)
		assert.Nil(t, b.Installation)
		assert.Nil(t, b.Purchase)
	}
}

func TestBuild_ShipStatus(t *testing.T) {
	cases := []struct {
		name     string
		shipDate any
		confirm  any
		want     string
	}{
		{"no ship date", nil, nil, ShipStatusUnprocessed},
		{"no ship date ignores flag", "", "N", ShipStatusUnprocessed},
		{"ship date, flag false", "01/06/2022", "N", ShipStatusTentative},
		{"ship date, flag true", "01/06/2022", "Y", ShipStatusConfirmed},
		{"ship date, flag absent", "01/06/2022", nil, ShipStatusConfirmed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Build(source.Row{
				"SALES_OR":          "10022",
				"CLIENT_NO":         "C-100",
				"JOB_NUM":           "777",
				"DATE_SHIP":         tc.shipDate,
				"SHIP_DATE_CONFIRM": tc.confirm,
			}, nil, nil, testMaps())
			require.NoError(t, err)
			require.NotNil(t, b.Production)
			assert.Equal(t, tc.want, b.Production.ShipStatus)
		})
	}
}

func TestBuild_MissingClientSkips(t *testing.T) {
	_, err := Build(source.Row{
		"SALES_OR":  "10023",
		"CLIENT_NO": "C-999",
	}, nil, nil, testMaps())
	assert.ErrorIs(t, err, ErrNoClient)

	_, err = Build(source.Row{"SALES_OR": "10023"}, nil, nil, testMaps())
	assert.ErrorIs(t, err, ErrNoClient)
}

func TestBuild_MissingNumberDropped(t *testing.T) {
	_, err := Build(source.Row{"CLIENT_NO": "C-100"}, nil, nil, testMaps())
	assert.ErrorIs(t, err, ErrNoNumber)
}

func TestBuild_SoftLookupMissesLeaveNilKeys(t *testing.T) {
	b, err := Build(source.Row{
		"SALES_OR":   "10024",
		"CLIENT_NO":  "C-100",
		"JOB_NUM":    "888",
		"SPECIES":    "Unobtanium",
		"COLOR":      "Espresso",
		"LOWER_DOOR": "Shaker",
		"INSTALL_ID": "INST-9",
	}, nil, nil, testMaps())
	require.NoError(t, err)

	assert.Nil(t, b.Cabinet.SpeciesID)
	require.NotNil(t, b.Cabinet.ColorID)
	assert.Equal(t, int64(20), *b.Cabinet.ColorID)
	require.NotNil(t, b.Cabinet.DoorStyleID)
	assert.Equal(t, int64(30), *b.Cabinet.DoorStyleID)
	assert.Nil(t, b.Installation.InstallerID)
}

func TestBuild_FieldCoercion(t *testing.T) {
	b, err := Build(source.Row{
		"SALES_OR":   "10025",
		"CLIENT_NO":  "C-200",
		"JOB_NUM":    "M207",
		"TOTAL":      "$12,500.00",
		"DEPOSIT":    "",
		"COMMENTS":   `first\nsecond`,
		"ORDER_TYPE": "",
		"DATE_SOLD":  "15/03/2021",
		"DOORS_COMP": "Complete",
		"RUSH":       "Y",
		"HINGE_SC":   "garbage",
	}, source.Row{"LAYOUT": "02/01/2022"}, nil, testMaps())
	require.NoError(t, err)

	assert.Equal(t, int64(2), b.SalesOrder.ClientID)
	assert.Equal(t, "12500", b.SalesOrder.Total.String())
	assert.True(t, b.SalesOrder.Deposit.IsZero())
	require.NotNil(t, b.SalesOrder.Comments)
	assert.Equal(t, "first\nsecond", *b.SalesOrder.Comments)
	assert.Equal(t, "Unknown", b.SalesOrder.OrderType)
	require.NotNil(t, b.SalesOrder.CreatedAt)
	assert.Equal(t, time.March, b.SalesOrder.CreatedAt.Month())

	require.True(t, b.HasJob())
	assert.Equal(t, "M207", b.Job.BaseNumber)
	assert.Nil(t, b.Job.Suffix)

	require.NotNil(t, b.Production.DoorsCompletedActual)
	assert.Equal(t, 1999, b.Production.DoorsCompletedActual.Year())
	assert.Equal(t, b.Production.DoorsCompletedActual, b.Production.InPlantActual)
	assert.True(t, b.Production.Rush)

	// unrecognized boolean defaults to false
	assert.False(t, b.Cabinet.HingeSoftClose)

	require.NotNil(t, b.SalesOrder.LayoutDate)
	assert.Equal(t, time.January, b.SalesOrder.LayoutDate.Month())
}

// Mirrors the three-record shape of a real run: one full job, one
// quote-only order, one record with no resolvable client.
func TestBuild_MixedBatch(t *testing.T) {
	maps := testMaps()

	a, err := Build(source.Row{"SALES_OR": "A", "CLIENT_NO": "C-100", "JOB_NUM": "100-S1"}, nil, nil, maps)
	require.NoError(t, err)
	b, err := Build(source.Row{"SALES_OR": "B", "CLIENT_NO": "C-200"}, nil, nil, maps)
	require.NoError(t, err)
	_, errC := Build(source.Row{"SALES_OR": "C", "CLIENT_NO": "C-999"}, nil, nil, maps)

	assert.True(t, a.HasJob())
	assert.False(t, b.HasJob())
	assert.ErrorIs(t, errC, ErrNoClient)
}
