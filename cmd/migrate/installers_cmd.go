package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oakridge-cabinets/migrate/internal/migration/loader"
)

type installerSummary struct {
	RunID   uuid.UUID `json:"run_id"`
	Mode    string    `json:"mode"`
	Rows    int       `json:"rows_read"`
	Created int       `json:"installers_created"`
}

func newInstallersCmd() *cobra.Command {
	var input string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "installers",
		Short: "Migrate the installer roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstallers(cmd.Context(), input, dryRun)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Workbook path (default MIGRATION_INPUT_FILE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Transform and report without writing")
	return cmd
}

func runInstallers(ctx context.Context, input string, dryRun bool) error {
	rt, ctx, err := setup(ctx, input)
	if err != nil {
		return err
	}
	defer rt.close()

	sheet, err := rt.sheet("Installers")
	if err != nil {
		return err
	}

	summary := &installerSummary{RunID: rt.runID, Rows: len(sheet.Rows)}
	if dryRun {
		summary.Mode = "dry_run"
		return rt.emit(summary)
	}

	created, err := loader.LoadInstallers(ctx, sheet.Rows, rt.log)
	if err != nil {
		return withCode(exitDBWrite, err)
	}

	summary.Mode = "applied"
	summary.Created = created
	rt.log.WithField("created", created).Info("installer migration complete")
	return rt.emit(summary)
}
