// Package graph turns joined legacy rows into typed entity bundles ready
// for loading. Nothing in this package performs I/O.
package graph

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sales-order lifecycle stages carried over from the legacy system.
const (
	StageQuote = "QUOTE"
	StageSold  = "SOLD"
)

// Shipment statuses derived from the legacy ship date and confirmation flag.
const (
	ShipStatusUnprocessed = "unprocessed"
	ShipStatusTentative   = "tentative"
	ShipStatusConfirmed   = "confirmed"
)

var (
	// ErrNoNumber reports a source row without a sales-order number; such
	// rows carry nothing worth keeping and are dropped.
	ErrNoNumber = errors.New("record has no sales order number")
	// ErrNoClient reports a record whose legacy client reference resolves to
	// nothing; the record is skipped, not loaded orphaned.
	ErrNoClient = errors.New("record has no resolvable client")
)

// Cabinet describes the door/finish/hardware attributes of one sales order.
// Cabinets are never shared between orders.
type Cabinet struct {
	SpeciesID       *int64
	ColorID         *int64
	DoorStyleID     *int64
	Finish          *string
	Glaze           *string
	TopDrawerFront  *string
	Interior        *string
	DrawerBox       *string
	DrawerHardware  *string
	Box             *string
	HingeSoftClose  bool
	DoorsPartsOnly  bool
	HandlesSupplied bool
	HandlesSelected bool
	Glass           bool
	PieceCount      *string
	GlassType       *string
}

// SalesOrder is the root commercial record: client, money, shipping info and
// the design-milestone checklist.
type SalesOrder struct {
	ClientID     int64
	Stage        string
	Total        decimal.Decimal
	Deposit      decimal.Decimal
	Designer     *string
	Comments     *string
	Install      bool
	OrderType    string
	DeliveryType string
	Number       string
	// CreatedAt overrides the store default when the legacy sold date is
	// known.
	CreatedAt *time.Time

	ShippingClientName *string
	ShippingStreet     *string
	ShippingCity       *string
	ShippingProvince   *string
	ShippingZip        *string
	ShippingPhone1     *string
	ShippingPhone2     *string
	ShippingEmail1     *string
	ShippingEmail2     *string

	LayoutDate         *time.Time
	ClientMeetingDate  *time.Time
	FollowUpDate       *time.Time
	ApplianceSpecsDate *time.Time
	SelectionsDate     *time.Time
	MarkoutDate        *time.Time
	ReviewDate         *time.Time
	SecondMarkoutDate  *time.Time

	FlooringType      *string
	FlooringClearance *string
}

// Production is the shop-floor schedule plus completion actuals.
type Production struct {
	Rush                bool
	PlacementDate       *time.Time
	DoorsInSchedule     *time.Time
	DoorsOutSchedule    *time.Time
	CutFinishSchedule   *time.Time
	CutMelamineSchedule *time.Time
	PaintInSchedule     *time.Time
	PaintOutSchedule    *time.Time
	AssemblySchedule    *time.Time
	ShipSchedule        *time.Time
	Comments            *string

	InPlantActual               *time.Time
	DoorsCompletedActual        *time.Time
	CutFinishCompletedActual    *time.Time
	CutMelamineCompletedActual  *time.Time
	PaintCompletedActual        *time.Time
	AssemblyCompletedActual     *time.Time
	CustomFinishCompletedActual *time.Time

	ShipStatus string
}

// Installation tracks the on-site side of a job.
type Installation struct {
	InstallerID           *int64
	HasShipped            bool
	InstallationDate      *time.Time
	InstallationCompleted *time.Time
	InspectionDate        *time.Time
	WrapDate              *time.Time
	WrapCompleted         *time.Time
	Notes                 *string
}

// Job is created only when the legacy record carries a parsable job number.
type Job struct {
	BaseNumber string
	Suffix     *string
	IsActive   bool
}

// Purchase tracks material ordering for a job.
type Purchase struct {
	DoorsOrderedAt   *time.Time
	GlassOrderedAt   *time.Time
	HandlesOrderedAt *time.Time
	AccOrderedAt     *time.Time
	Comments         *string
}

// Bundle is everything derived from one logical source record. Job and its
// satellites are nil for quote-only records.
type Bundle struct {
	Number     string
	Cabinet    Cabinet
	SalesOrder SalesOrder

	Job          *Job
	Production   *Production
	Installation *Installation
	Purchase     *Purchase
}

// HasJob reports whether the record parsed to a full job rather than a
// quote-only sales order.
func (b *Bundle) HasJob() bool {
	return b.Job != nil
}
