package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oakridge-cabinets/migrate/internal/migration/lookup"
)

func newPreviewCmd() *cobra.Command {
	var input string
	var limit int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print transformed sales order bundles as JSON without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), input, limit)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Workbook path (default MIGRATION_INPUT_FILE)")
	cmd.Flags().IntVar(&limit, "limit", 5, "Number of bundles to print")
	return cmd
}

func runPreview(ctx context.Context, input string, limit int) error {
	rt, ctx, err := setup(ctx, input)
	if err != nil {
		return err
	}
	defer rt.close()

	maps, err := lookup.Fetch(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}

	bundles, _, err := prepareSalesOrders(rt, maps)
	if err != nil {
		return err
	}

	if limit > 0 && limit < len(bundles) {
		bundles = bundles[:limit]
	}
	for _, b := range bundles {
		if err := rt.emit(b); err != nil {
			return err
		}
	}
	return nil
}
