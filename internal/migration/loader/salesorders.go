package loader

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oakridge-cabinets/migrate/internal/migration/graph"
	"github.com/oakridge-cabinets/migrate/pkg/composables"
)

var cabinetColumns = []string{
	"species_id", "color_id", "door_style_id", "finish", "glaze",
	"top_drawer_front", "interior", "drawer_box", "drawer_hardware",
	"box", "hinge_soft_close", "doors_parts_only", "handles_supplied",
	"handles_selected", "glass", "piece_count", "glass_type",
}

var salesOrderColumns = []string{
	"client_id", "cabinet_id", "stage", "total", "deposit", "designer",
	"comments", "install", "order_type", "delivery_type", "sales_order_number",
	"shipping_client_name", "shipping_street", "shipping_city", "shipping_province",
	"shipping_zip", "shipping_phone_1", "shipping_phone_2", "shipping_email_1",
	"shipping_email_2", "layout_date", "client_meeting_date", "follow_up_date",
	"appliance_specs_date", "selections_date", "markout_date", "review_date",
	"second_markout_date", "flooring_type", "flooring_clearance",
}

var salesOrderColumnsWithCreatedAt = append(append([]string{}, salesOrderColumns...), "created_at")

var productionColumns = []string{
	"rush", "placement_date", "doors_in_schedule", "doors_out_schedule",
	"cut_finish_schedule", "cut_melamine_schedule", "paint_in_schedule",
	"paint_out_schedule", "assembly_schedule", "ship_schedule", "production_comments",
	"in_plant_actual", "doors_completed_actual", "cut_finish_completed_actual",
	"cut_melamine_completed_actual", "paint_completed_actual", "assembly_completed_actual",
	"custom_finish_completed_actual", "ship_status",
}

var installationColumns = []string{
	"installer_id", "has_shipped", "installation_date", "installation_completed",
	"inspection_date", "wrap_date", "wrap_completed", "installation_notes",
}

var jobColumns = []string{
	"job_base_number", "job_suffix", "sales_order_id", "prod_id", "installation_id", "is_active",
}

var purchaseColumns = []string{
	"job_id", "doors_ordered_at", "glass_ordered_at", "handles_ordered_at",
	"acc_ordered_at", "purchasing_comments",
}

func cabinetArgs(c *graph.Cabinet) []any {
	return []any{
		c.SpeciesID, c.ColorID, c.DoorStyleID, c.Finish, c.Glaze,
		c.TopDrawerFront, c.Interior, c.DrawerBox, c.DrawerHardware,
		c.Box, c.HingeSoftClose, c.DoorsPartsOnly, c.HandlesSupplied,
		c.HandlesSelected, c.Glass, c.PieceCount, c.GlassType,
	}
}

func salesOrderArgs(so *graph.SalesOrder, cabinetID int64) []any {
	return []any{
		so.ClientID, cabinetID, so.Stage, so.Total, so.Deposit, so.Designer,
		so.Comments, so.Install, so.OrderType, so.DeliveryType, so.Number,
		so.ShippingClientName, so.ShippingStreet, so.ShippingCity, so.ShippingProvince,
		so.ShippingZip, so.ShippingPhone1, so.ShippingPhone2, so.ShippingEmail1,
		so.ShippingEmail2, so.LayoutDate, so.ClientMeetingDate, so.FollowUpDate,
		so.ApplianceSpecsDate, so.SelectionsDate, so.MarkoutDate, so.ReviewDate,
		so.SecondMarkoutDate, so.FlooringType, so.FlooringClearance,
	}
}

func productionArgs(p *graph.Production) []any {
	return []any{
		p.Rush, p.PlacementDate, p.DoorsInSchedule, p.DoorsOutSchedule,
		p.CutFinishSchedule, p.CutMelamineSchedule, p.PaintInSchedule,
		p.PaintOutSchedule, p.AssemblySchedule, p.ShipSchedule, p.Comments,
		p.InPlantActual, p.DoorsCompletedActual, p.CutFinishCompletedActual,
		p.CutMelamineCompletedActual, p.PaintCompletedActual, p.AssemblyCompletedActual,
		p.CustomFinishCompletedActual, p.ShipStatus,
	}
}

func installationArgs(inst *graph.Installation) []any {
	return []any{
		inst.InstallerID, inst.HasShipped, inst.InstallationDate, inst.InstallationCompleted,
		inst.InspectionDate, inst.WrapDate, inst.WrapCompleted, inst.Notes,
	}
}

// jobPositions returns the input positions of bundles that parsed to a full
// job. The subset is sparse, so generated keys are tracked per position
// rather than by array alignment.
func jobPositions(bundles []*graph.Bundle) []int {
	var pos []int
	for i, b := range bundles {
		if b.HasJob() {
			pos = append(pos, i)
		}
	}
	return pos
}

// splitSalesOrders partitions sales-order rows by whether they carry a
// creation-timestamp override (an extra column), remembering each row's
// original position so generated keys can be merged back in input order.
func splitSalesOrders(bundles []*graph.Bundle, cabinetIDs []int64) (plain, dated [][]any, plainPos, datedPos []int) {
	for i, b := range bundles {
		args := salesOrderArgs(&b.SalesOrder, cabinetIDs[i])
		if b.SalesOrder.CreatedAt != nil {
			dated = append(dated, append(args, *b.SalesOrder.CreatedAt))
			datedPos = append(datedPos, i)
		} else {
			plain = append(plain, args)
			plainPos = append(plainPos, i)
		}
	}
	return plain, dated, plainPos, datedPos
}

// Stats summarizes one sales-order batch.
type Stats struct {
	Jobs   int
	Quotes int
}

// LoadSalesOrders persists the bundles in dependency order inside one
// transaction: cabinets, sales orders, production + installation for job
// records, jobs, purchase tracking. A store error rolls back everything.
func LoadSalesOrders(ctx context.Context, bundles []*graph.Bundle, log *logrus.Entry) (*Stats, error) {
	stats := &Stats{}
	if len(bundles) == 0 {
		return stats, nil
	}

	err := composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		cabRows := make([][]any, len(bundles))
		for i, b := range bundles {
			cabRows[i] = cabinetArgs(&b.Cabinet)
		}
		cabinetIDs, err := insertReturningIDs(txCtx, tx, "cabinets", cabinetColumns, "id", cabRows)
		if err != nil {
			return wrapStoreErr(err, "insert cabinets")
		}
		log.WithField("rows", len(cabinetIDs)).Info("inserted cabinets")

		soIDs := make([]int64, len(bundles))
		plain, dated, plainPos, datedPos := splitSalesOrders(bundles, cabinetIDs)
		if len(plain) > 0 {
			ids, err := insertReturningIDs(txCtx, tx, "sales_orders", salesOrderColumns, "id", plain)
			if err != nil {
				return wrapStoreErr(err, "insert sales orders")
			}
			mergeKeys(soIDs, plainPos, ids)
		}
		if len(dated) > 0 {
			ids, err := insertReturningIDs(txCtx, tx, "sales_orders", salesOrderColumnsWithCreatedAt, "id", dated)
			if err != nil {
				return wrapStoreErr(err, "insert sales orders with created_at")
			}
			mergeKeys(soIDs, datedPos, ids)
		}
		log.WithField("rows", len(soIDs)).Info("inserted sales orders")

		jobPos := jobPositions(bundles)
		stats.Jobs = len(jobPos)
		stats.Quotes = len(bundles) - len(jobPos)

		prodIDs := make(map[int]int64, len(jobPos))
		instIDs := make(map[int]int64, len(jobPos))
		if len(jobPos) > 0 {
			prodRows := make([][]any, len(jobPos))
			instRows := make([][]any, len(jobPos))
			for k, pos := range jobPos {
				prodRows[k] = productionArgs(bundles[pos].Production)
				instRows[k] = installationArgs(bundles[pos].Installation)
			}

			ids, err := insertReturningIDs(txCtx, tx, "production_schedule", productionColumns, "prod_id", prodRows)
			if err != nil {
				return wrapStoreErr(err, "insert production schedules")
			}
			for k, pos := range jobPos {
				prodIDs[pos] = ids[k]
			}
			log.WithField("rows", len(ids)).Info("inserted production schedules")

			ids, err = insertReturningIDs(txCtx, tx, "installation", installationColumns, "installation_id", instRows)
			if err != nil {
				return wrapStoreErr(err, "insert installations")
			}
			for k, pos := range jobPos {
				instIDs[pos] = ids[k]
			}
			log.WithField("rows", len(ids)).Info("inserted installations")

			jobRows := make([][]any, len(jobPos))
			for k, pos := range jobPos {
				j := bundles[pos].Job
				jobRows[k] = []any{j.BaseNumber, j.Suffix, soIDs[pos], prodIDs[pos], instIDs[pos], j.IsActive}
			}
			jobIDs, err := insertReturningIDs(txCtx, tx, "jobs", jobColumns, "id", jobRows)
			if err != nil {
				return wrapStoreErr(err, "insert jobs")
			}
			log.WithField("rows", len(jobIDs)).Info("inserted jobs")

			purchRows := make([][]any, len(jobPos))
			for k, pos := range jobPos {
				p := bundles[pos].Purchase
				purchRows[k] = []any{
					jobIDs[k], p.DoorsOrderedAt, p.GlassOrderedAt, p.HandlesOrderedAt,
					p.AccOrderedAt, p.Comments,
				}
			}
			if err := insertRows(txCtx, tx, "purchase_tracking", purchaseColumns, purchRows); err != nil {
				return wrapStoreErr(err, "insert purchase tracking")
			}
			log.WithField("rows", len(purchRows)).Info("inserted purchase tracking")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
