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

type salesOrderSummary struct {
	RunID   uuid.UUID `json:"run_id"`
	Mode    string    `json:"mode"`
	Jobs    int       `json:"jobs_created"`
	Quotes  int       `json:"quotes_created"`
	Skipped int       `json:"skipped_no_client"`
	Failed  int       `json:"failed"`
}

func newSalesOrdersCmd() *cobra.Command {
	var input string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "salesorders",
		Short: "Migrate sales orders with their cabinets, jobs, production, installation and purchase records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSalesOrders(cmd.Context(), input, dryRun)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Workbook path (default MIGRATION_INPUT_FILE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Transform and report without writing")
	return cmd
}

// indexBySalesOrder maps secondary-sheet rows by their cleaned SALES_OR key
// so each sales order joins its design-check and order-check rows in O(1).
func indexBySalesOrder(sheet *source.Sheet) map[string]source.Row {
	idx := make(map[string]source.Row, len(sheet.Rows))
	for _, row := range sheet.Rows {
		key := normalize.Text(row.Get("SALES_OR"))
		if key == nil {
			continue
		}
		if _, ok := idx[*key]; ok {
			continue
		}
		idx[*key] = row
	}
	return idx
}

func prepareSalesOrders(rt *runtime, maps *lookup.Maps) ([]*graph.Bundle, *salesOrderSummary, error) {
	soSheet, err := rt.sheet("SalesOrders")
	if err != nil {
		return nil, nil, err
	}
	dcSheet, err := rt.sheet("DesignChecks")
	if err != nil {
		return nil, nil, err
	}
	ocSheet, err := rt.sheet("OrderChecks")
	if err != nil {
		return nil, nil, err
	}

	dcIdx := indexBySalesOrder(dcSheet)
	ocIdx := indexBySalesOrder(ocSheet)

	summary := &salesOrderSummary{RunID: rt.runID}
	bundles := make([]*graph.Bundle, 0, len(soSheet.Rows))
	for _, row := range soSheet.Rows {
		number := normalize.Text(row.Get("SALES_OR"))
		if number == nil {
			continue
		}

		b, err := graph.Build(row, dcIdx[*number], ocIdx[*number], maps)
		switch {
		case err == nil:
			bundles = append(bundles, b)
		case errors.Is(err, graph.ErrNoClient):
			summary.Skipped++
			rt.log.WithField("sales_order", *number).Debug("skipped: no matching client")
		default:
			summary.Failed++
			rt.log.WithField("sales_order", *number).WithError(err).Warn("failed to transform record")
		}
	}

	rt.log.WithFields(logrus.Fields{
		"prepared": len(bundles),
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
	}).Info("records prepared")
	return bundles, summary, nil
}

func runSalesOrders(ctx context.Context, input string, dryRun bool) error {
	rt, ctx, err := setup(ctx, input)
	if err != nil {
		return err
	}
	defer rt.close()

	maps, err := lookup.Fetch(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}

	bundles, summary, err := prepareSalesOrders(rt, maps)
	if err != nil {
		return err
	}

	if dryRun {
		summary.Mode = "dry_run"
		for _, b := range bundles {
			if b.HasJob() {
				summary.Jobs++
			} else {
				summary.Quotes++
			}
		}
		return rt.emit(summary)
	}

	stats, err := loader.LoadSalesOrders(ctx, bundles, rt.log)
	if err != nil {
		return withCode(exitDBWrite, err)
	}

	summary.Mode = "applied"
	summary.Jobs = stats.Jobs
	summary.Quotes = stats.Quotes
	rt.log.WithFields(logrus.Fields{
		"jobs":    summary.Jobs,
		"quotes":  summary.Quotes,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("sales order migration complete")
	return rt.emit(summary)
}
