package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Migrate the legacy cabinet-shop workbook into the relational schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newLookupsCmd())
	cmd.AddCommand(newClientsCmd())
	cmd.AddCommand(newInstallersCmd())
	cmd.AddCommand(newSalesOrdersCmd())
	cmd.AddCommand(newServiceCmd())
	cmd.AddCommand(newPreviewCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
