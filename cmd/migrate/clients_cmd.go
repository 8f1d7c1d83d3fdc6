package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oakridge-cabinets/migrate/internal/migration/loader"
)

type clientSummary struct {
	RunID   uuid.UUID `json:"run_id"`
	Mode    string    `json:"mode"`
	Rows    int       `json:"rows_read"`
	Created int       `json:"clients_created"`
}

func newClientsCmd() *cobra.Command {
	var input string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Migrate the legacy client list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClients(cmd.Context(), input, dryRun)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Workbook path (default MIGRATION_INPUT_FILE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Transform and report without writing")
	return cmd
}

func runClients(ctx context.Context, input string, dryRun bool) error {
	rt, ctx, err := setup(ctx, input)
	if err != nil {
		return err
	}
	defer rt.close()

	sheet, err := rt.sheet("Client")
	if err != nil {
		return err
	}

	summary := &clientSummary{RunID: rt.runID, Rows: len(sheet.Rows)}
	if dryRun {
		summary.Mode = "dry_run"
		return rt.emit(summary)
	}

	created, err := loader.LoadClients(ctx, sheet.Rows, rt.log)
	if err != nil {
		return withCode(exitDBWrite, err)
	}

	summary.Mode = "applied"
	summary.Created = created
	rt.log.WithField("created", created).Info("client migration complete")
	return rt.emit(summary)
}
