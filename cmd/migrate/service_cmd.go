package main

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oakridge-cabinets/migrate/internal/migration/graph"
	"github.com/oakridge-cabinets/migrate/internal/migration/loader"
	"github.com/oakridge-cabinets/migrate/internal/migration/lookup"
	"github.com/oakridge-cabinets/migrate/internal/migration/normalize"
	"github.com/oakridge-cabinets/migrate/internal/migration/source"
)

type serviceSummary struct {
	RunID   uuid.UUID `json:"run_id"`
	Mode    string    `json:"mode"`
	Orders  int       `json:"service_orders_created"`
	Parts   int       `json:"parts_created"`
	Skipped int       `json:"skipped_no_job"`
	Failed  int       `json:"failed"`
}

func newServiceCmd() *cobra.Command {
	var input string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "service",
		Short: "Migrate service orders and their back-ordered parts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), input, dryRun)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Workbook path (default MIGRATION_INPUT_FILE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Transform and report without writing")
	return cmd
}

// groupPartsByOrder buckets SalesBO rows by their cleaned service-order
// number. Legacy keys arrive float-rendered ("301.0"), so both sides go
// through the same integer-string normalization.
func groupPartsByOrder(sheet *source.Sheet) map[string][]source.Row {
	groups := make(map[string][]source.Row)
	for _, row := range sheet.Rows {
		key := normalize.IntegerString(row.Get("SO_NO"))
		if key == nil {
			continue
		}
		groups[*key] = append(groups[*key], row)
	}
	return groups
}

func prepareServiceOrders(rt *runtime, jobs map[string]int64) ([]*graph.ServiceOrder, *serviceSummary, error) {
	serviceSheet, err := rt.sheet("Service")
	if err != nil {
		return nil, nil, err
	}
	partsSheet, err := rt.sheet("SalesBO")
	if err != nil {
		return nil, nil, err
	}

	parts := groupPartsByOrder(partsSheet)
	summary := &serviceSummary{RunID: rt.runID}

	seen := make(map[string]struct{}, len(serviceSheet.Rows))
	orders := make([]*graph.ServiceOrder, 0, len(serviceSheet.Rows))
	for _, row := range serviceSheet.Rows {
		number := normalize.IntegerString(row.Get("SO_NO"))
		if number == nil {
			continue
		}
		// duplicate service headers: first occurrence wins
		if _, dup := seen[*number]; dup {
			continue
		}
		seen[*number] = struct{}{}

		order, err := graph.BuildServiceOrder(row, parts[*number], jobs)
		switch {
		case err == nil:
			orders = append(orders, order)
		case errors.Is(err, graph.ErrNoJob):
			summary.Skipped++
			rt.log.WithField("service_order", *number).Debug("skipped: no matching job")
		default:
			summary.Failed++
			rt.log.WithField("service_order", *number).WithError(err).Warn("failed to transform service order")
		}
	}

	rt.log.WithFields(logrus.Fields{
		"prepared": len(orders),
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
	}).Info("service orders prepared")
	return orders, summary, nil
}

func runService(ctx context.Context, input string, dryRun bool) error {
	rt, ctx, err := setup(ctx, input)
	if err != nil {
		return err
	}
	defer rt.close()

	jobs, err := lookup.FetchJobs(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	rt.log.WithField("jobs", len(jobs)).Info("job lookup loaded")

	orders, summary, err := prepareServiceOrders(rt, jobs)
	if err != nil {
		return err
	}

	if dryRun {
		summary.Mode = "dry_run"
		summary.Orders = len(orders)
		for _, o := range orders {
			summary.Parts += len(o.Parts)
		}
		return rt.emit(summary)
	}

	stats, err := loader.LoadServiceOrders(ctx, orders, rt.log)
	if err != nil {
		return withCode(exitDBWrite, err)
	}

	summary.Mode = "applied"
	summary.Orders = stats.Orders
	summary.Parts = stats.Parts
	rt.log.WithFields(logrus.Fields{
		"orders":  summary.Orders,
		"parts":   summary.Parts,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("service order migration complete")
	return rt.emit(summary)
}
