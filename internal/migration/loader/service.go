package loader

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oakridge-cabinets/migrate/internal/migration/graph"
	"github.com/oakridge-cabinets/migrate/pkg/composables"
)

var serviceOrderColumns = []string{
	"job_id", "service_order_number", "date_entered", "due_date", "completed_at",
	"service_type", "service_by", "hours_estimated", "comments",
	"service_type_detail", "chargeable", "created_by", "is_warranty_so",
}

var servicePartColumns = []string{
	"service_order_id", "qty", "part", "description",
}

func serviceOrderArgs(o *graph.ServiceOrder) []any {
	return []any{
		o.JobID, o.Number, o.DateEntered, o.DueDate, o.CompletedAt,
		o.ServiceType, o.ServiceBy, o.HoursEstimated, o.Comments,
		o.TypeDetail, o.Chargeable, o.CreatedBy, o.IsWarranty,
	}
}

// ServiceStats summarizes one service-order batch.
type ServiceStats struct {
	Orders int
	Parts  int
}

// LoadServiceOrders persists service orders then their part lines in one
// transaction, aligning parts to the header keys by input position.
func LoadServiceOrders(ctx context.Context, orders []*graph.ServiceOrder, log *logrus.Entry) (*ServiceStats, error) {
	stats := &ServiceStats{}
	if len(orders) == 0 {
		return stats, nil
	}

	err := composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		headerRows := make([][]any, len(orders))
		for i, o := range orders {
			headerRows[i] = serviceOrderArgs(o)
		}
		ids, err := insertReturningIDs(txCtx, tx, "service_orders", serviceOrderColumns, "service_order_id", headerRows)
		if err != nil {
			return wrapStoreErr(err, "insert service orders")
		}
		stats.Orders = len(ids)
		log.WithField("rows", len(ids)).Info("inserted service orders")

		var partRows [][]any
		for i, o := range orders {
			for _, p := range o.Parts {
				partRows = append(partRows, []any{ids[i], p.Qty, p.Part, p.Description})
			}
		}
		if len(partRows) > 0 {
			if err := insertRows(txCtx, tx, "service_order_parts", servicePartColumns, partRows); err != nil {
				return wrapStoreErr(err, "insert service order parts")
			}
		}
		stats.Parts = len(partRows)
		log.WithField("rows", len(partRows)).Info("inserted service order parts")

		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
