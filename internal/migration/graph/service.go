package graph

import (
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/oakridge-cabinets/migrate/internal/migration/lookup"
	"github.com/oakridge-cabinets/migrate/internal/migration/normalize"
	"github.com/oakridge-cabinets/migrate/internal/migration/source"
)

// ErrNoJob reports a service order whose parent sales-order number matches
// no loaded job. Such orders are skipped, never inserted as orphans.
var ErrNoJob = errors.New("service order has no resolvable job")

// ServicePart is one back-ordered part line under a service order.
type ServicePart struct {
	Qty         int
	Part        string
	Description *string
}

// ServiceOrder is a post-installation service call linked to a job.
type ServiceOrder struct {
	JobID  int64
	Number string
	// DateEntered falls back to the sentinel date: the order predates
	// tracking and its true entry date is unknown.
	DateEntered    time.Time
	DueDate        *time.Time
	CompletedAt    *time.Time
	ServiceType    *string
	ServiceBy      *string
	HoursEstimated *int
	Comments       *string
	TypeDetail     *string
	Chargeable     *bool
	CreatedBy      *string
	IsWarranty     bool

	Parts []ServicePart
}

// BuildServiceOrder derives a service order plus its part lines from one
// Service sheet row and its grouped SalesBO rows.
func BuildServiceOrder(row source.Row, partRows []source.Row, jobs map[string]int64) (*ServiceOrder, error) {
	number := normalize.IntegerString(row.Get("SO_NO"))
	if number == nil {
		return nil, ErrNoNumber
	}

	jobID, ok := lookup.Get(jobs, normalize.IntegerString(row.Get("SALES_OR")))
	if !ok {
		return nil, ErrNoJob
	}

	completedAt := normalize.Date(row.Get("DATE_COMP"))
	if completedAt == nil {
		completedAt = normalize.CompletionTimestamp(row.Get("COMPLETE"))
	}

	dateEntered := normalize.SentinelDate
	if d := normalize.Date(row.Get("DATE_ENTER")); d != nil {
		dateEntered = *d
	}

	order := &ServiceOrder{
		JobID:       jobID,
		Number:      *number,
		DateEntered: dateEntered,
		DueDate:     normalize.Date(row.Get("DATE_DUE")),
		CompletedAt: completedAt,
		ServiceType: normalize.Text(row.Get("SER_TYPE")),
		ServiceBy:   normalize.Text(row.Get("SERVC_BY")),
		Comments:    normalize.MultilineText(row.Get("COMMENTS")),
		TypeDetail:  normalize.Text(row.Get("BO_ITEM")),
		Chargeable:  normalize.Boolean(row.Get("CHARGEBLE")),
		CreatedBy:   normalize.Text(row.Get("ENTER_BY")),
		IsWarranty:  false,
	}

	var totalHours float64
	for _, part := range partRows {
		if h := normalize.Text(part.Get("HOURS")); h != nil {
			if f, err := strconv.ParseFloat(*h, 64); err == nil {
				totalHours += f
			}
		}

		partNo := normalize.Text(part.Get("PART_NO"))
		desc := normalize.MultilineText(part.Get("COMMENT"))
		if partNo == nil && desc == nil {
			continue
		}

		qty := 1
		if q := normalize.IntegerString(part.Get("QTY")); q != nil {
			if n, err := strconv.Atoi(*q); err == nil {
				qty = n
			}
		}

		p := ServicePart{Qty: qty, Part: "-", Description: desc}
		if partNo != nil {
			p.Part = *partNo
		}
		order.Parts = append(order.Parts, p)
	}

	if totalHours > 0 {
		h := int(totalHours)
		order.HoursEstimated = &h
	}
	return order, nil
}
