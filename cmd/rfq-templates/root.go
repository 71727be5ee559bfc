package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rfq-templates",
		Short:         "Maintenance tool for the hierarchical RFQ template file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newAddOtherCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newRollbackCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
