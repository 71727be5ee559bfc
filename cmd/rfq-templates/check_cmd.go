package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zintra/rfq-templates/pkg/templatefile"
)

type checkOptions struct {
	templateFlags
	json bool
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report select fields missing the catch-all option (exit 7 when any)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := loadRunContext(opts.templateFlags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			snap, err := loadSnapshot(rc.path)
			if err != nil {
				return err
			}
			fix, err := templatefile.PlanFix(snap, rc.opts)
			if err != nil {
				return withCode(exitValidation, err)
			}
			report := fix.Report

			summary := summarize("ok", rc.path, report)
			summary.DryRun = true
			if report.Changed() {
				summary.Status = "pending"
			}
			if opts.json {
				if err := writeJSONLine(out, summary); err != nil {
					return err
				}
			} else {
				printReport(out, report)
			}

			if report.Changed() {
				return withCode(exitPending, fmt.Errorf("%d select fields in %s are missing %q", report.Updated(), rc.path, report.Sentinel))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", "", "Path to the hierarchical template JSON (default: RFQ_TEMPLATES_PATH)")
	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "Optional YAML profile overriding sentinel, select type and categories")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print a single JSON summary line instead of the text report")
	return cmd
}
