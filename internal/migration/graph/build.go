package graph

import (
	"strings"

	"github.com/oakridge-cabinets/migrate/internal/migration/lookup"
	"github.com/oakridge-cabinets/migrate/internal/migration/normalize"
	"github.com/oakridge-cabinets/migrate/internal/migration/source"
	"github.com/oakridge-cabinets/migrate/pkg/mapping"
)

func optionalKey(m map[string]int64, key *string) *int64 {
	// A miss on an optional reference leaves the foreign key null.
	id, ok := lookup.Get(m, key)
	if !ok {
		return nil
	}
	return &id
}

func boolOrFalse(v any) bool {
	return mapping.Value(normalize.Boolean(v))
}

// Build derives the full entity bundle for one sales-order row joined with
// its design-check and order-check rows. dc and oc may be nil when the
// secondary sheets have no matching row.
func Build(so, dc, oc source.Row, maps *lookup.Maps) (*Bundle, error) {
	number := normalize.Text(so.Get("SALES_OR"))
	if number == nil {
		return nil, ErrNoNumber
	}
	if dc == nil {
		dc = source.Row{}
	}
	if oc == nil {
		oc = source.Row{}
	}

	// The client reference is a hard dependency.
	clientID, ok := lookup.Get(maps.Clients, normalize.Text(so.Get("CLIENT_NO")))
	if !ok {
		return nil, ErrNoClient
	}

	base, suffix := normalize.ParseJobNumber(so.Get("JOB_NUM"))

	stage := StageQuote
	if raw := normalize.Text(so.Get("STAGE")); raw != nil {
		stage = strings.ToUpper(*raw)
	}
	if base != nil {
		// A job number on a quote means it actually sold.
		if stage == StageQuote {
			stage = StageSold
		}
	} else {
		// Without a job number the record can only ever be a quote.
		stage = StageQuote
	}

	shipDate := normalize.Date(so.Get("DATE_SHIP"))
	shipConfirmed := normalize.Boolean(so.Get("SHIP_DATE_CONFIRM"))
	shipStatus := ShipStatusConfirmed
	switch {
	case shipDate == nil:
		shipStatus = ShipStatusUnprocessed
	case shipConfirmed != nil && !*shipConfirmed:
		shipStatus = ShipStatusTentative
	}

	bundle := &Bundle{
		Number: *number,
		Cabinet: Cabinet{
			SpeciesID:       optionalKey(maps.Species, normalize.Text(so.Get("SPECIES"))),
			ColorID:         optionalKey(maps.Colors, normalize.Text(so.Get("COLOR"))),
			DoorStyleID:     optionalKey(maps.DoorStyles, normalize.Text(so.Get("LOWER_DOOR"))),
			Finish:          normalize.Text(so.Get("FINISH")),
			Glaze:           normalize.Text(so.Get("GLAZE")),
			TopDrawerFront:  normalize.Text(so.Get("DWR_FRONT")),
			Interior:        normalize.Text(so.Get("INTERIOR")),
			DrawerBox:       normalize.Text(so.Get("DWR")),
			DrawerHardware:  normalize.Text(so.Get("DWR_HRW")),
			Box:             normalize.Text(so.Get("BOX")),
			HingeSoftClose:  boolOrFalse(so.Get("HINGE_SC")),
			DoorsPartsOnly:  boolOrFalse(so.Get("DOORS_PARTS_ONLY")),
			HandlesSupplied: boolOrFalse(so.Get("HANDLES")),
			HandlesSelected: boolOrFalse(so.Get("HANDLES_SEL")),
			Glass:           boolOrFalse(so.Get("GLASS")),
			PieceCount:      normalize.Text(so.Get("PIECE_COUNT")),
			GlassType:       normalize.Text(so.Get("GLASS_TYPE")),
		},
		SalesOrder: SalesOrder{
			ClientID:     clientID,
			Stage:        stage,
			Total:        normalize.Money(so.Get("TOTAL")),
			Deposit:      normalize.Money(so.Get("DEPOSIT")),
			Designer:     normalize.Text(so.Get("DESIGNER")),
			Comments:     normalize.MultilineText(so.Get("COMMENTS")),
			Install:      boolOrFalse(so.Get("INSTALL")),
			OrderType:    mapping.Or(normalize.Text(so.Get("ORDER_TYPE")), "Unknown"),
			DeliveryType: mapping.Or(normalize.Text(so.Get("DEL_TYPE")), "Unknown"),
			Number:       *number,
			CreatedAt:    normalize.Date(so.Get("DATE_SOLD")),

			ShippingClientName: normalize.Text(so.Get("SHIP_LAST_NAME")),
			ShippingStreet:     normalize.Text(so.Get("SHIP_ADDRS")),
			ShippingCity:       normalize.Text(so.Get("SHIP_CITY")),
			ShippingProvince:   normalize.Text(so.Get("SHIP_PROV")),
			ShippingZip:        normalize.Text(so.Get("SHIP_ZIP")),
			ShippingPhone1:     normalize.Text(so.Get("SHIP_PHONE1")),
			ShippingPhone2:     normalize.Text(so.Get("SHIP_PHONE2")),
			ShippingEmail1:     normalize.Text(so.Get("SHIP_EMAIL1")),
			ShippingEmail2:     normalize.Text(so.Get("SHIP_EMAIL2")),

			LayoutDate:         normalize.Date(dc.Get("LAYOUT")),
			ClientMeetingDate:  normalize.Date(dc.Get("CLIENT_MEETING_DATE")),
			FollowUpDate:       normalize.Date(so.Get("FOLLOW_UPDATE")),
			ApplianceSpecsDate: normalize.Date(dc.Get("APPLIANCE_SPECS")),
			SelectionsDate:     normalize.Date(dc.Get("SELECTIONS")),
			MarkoutDate:        normalize.Date(so.Get("SITE_MEASURE_DATE")),
			ReviewDate:         normalize.Date(dc.Get("REVIEW_DATE")),
			SecondMarkoutDate:  normalize.Date(so.Get("SECOND_MEASURE_DATE")),

			FlooringType:      normalize.Text(so.Get("FLOORING_TYPE")),
			FlooringClearance: normalize.Text(so.Get("FLOORING_CLEARENCE")),
		},
	}

	if base == nil {
		return bundle, nil
	}

	doorsComp := normalize.CompletionTimestamp(so.Get("DOORS_COMP"))

	bundle.Job = &Job{
		BaseNumber: *base,
		Suffix:     suffix,
		IsActive:   true,
	}
	bundle.Production = &Production{
		Rush:                boolOrFalse(so.Get("RUSH")),
		PlacementDate:       normalize.Date(so.Get("PROD_IN_DATE")),
		DoorsInSchedule:     normalize.Date(so.Get("DATE_DOR_START")),
		DoorsOutSchedule:    normalize.Date(so.Get("DATE_DOR_FIN")),
		CutFinishSchedule:   normalize.Date(so.Get("ISSUE_DATE")),
		CutMelamineSchedule: normalize.Date(so.Get("MEL_DATE")),
		PaintInSchedule:     normalize.Date(so.Get("PAINT_IN")),
		PaintOutSchedule:    normalize.Date(so.Get("PAINT_DATE")),
		AssemblySchedule:    normalize.Date(so.Get("ASS_DATE")),
		ShipSchedule:        shipDate,
		Comments:            normalize.MultilineText(so.Get("PROD_MEMO")),

		// DOORS_COMP doubles as the in-plant marker in the legacy sheet.
		InPlantActual:               doorsComp,
		DoorsCompletedActual:        doorsComp,
		CutFinishCompletedActual:    normalize.CompletionTimestamp(so.Get("ISSUED")),
		CutMelamineCompletedActual:  normalize.CompletionTimestamp(so.Get("MEL__ISSUED")),
		PaintCompletedActual:        normalize.CompletionTimestamp(so.Get("PAINT_COMP")),
		AssemblyCompletedActual:     normalize.CompletionTimestamp(so.Get("ASSEMBLED")),
		CustomFinishCompletedActual: normalize.Date(so.Get("F_C_DATE")),

		ShipStatus: shipStatus,
	}
	bundle.Installation = &Installation{
		InstallerID:           optionalKey(maps.Installers, normalize.Text(so.Get("INSTALL_ID"))),
		HasShipped:            boolOrFalse(so.Get("HAS_SHIP")),
		InstallationDate:      normalize.Date(so.Get("INSTALL_DATE")),
		InstallationCompleted: normalize.CompletionTimestamp(so.Get("STATUS")),
		InspectionDate:        normalize.Date(so.Get("INSPECTION_DATE")),
		WrapDate:              normalize.Date(so.Get("WRAP_DATE")),
		WrapCompleted:         normalize.CompletionTimestamp(so.Get("WRAP_COMP")),
		Notes:                 normalize.MultilineText(so.Get("INSTALL_MEMO")),
	}
	bundle.Purchase = &Purchase{
		DoorsOrderedAt:   normalize.CompletionTimestamp(so.Get("DOORS_ORDERED")),
		GlassOrderedAt:   normalize.CompletionTimestamp(so.Get("GLASS_ORD")),
		HandlesOrderedAt: normalize.CompletionTimestamp(oc.Get("HANDLES")),
		AccOrderedAt:     normalize.CompletionTimestamp(oc.Get("ACC")),
		Comments:         normalize.MultilineText(oc.Get("COMMENTS")),
	}

	return bundle, nil
}
