package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zintra/rfq-templates/pkg/templatefile"
)

type addOtherOptions struct {
	templateFlags
	manifestDir string
	dryRun      bool
	json        bool
}

func newAddOtherCmd() *cobra.Command {
	var opts addOtherOptions

	cmd := &cobra.Command{
		Use:   "add-other",
		Short: "Append the catch-all option to every select field that lacks it",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := loadRunContext(opts.templateFlags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			logger := rc.logger.WithFields(logrus.Fields{"path": rc.path, "sentinel": rc.opts.Sentinel})

			if !opts.json {
				fmt.Fprintf(out, "Processing: %s\n\n", rc.path)
			}

			snap, err := loadSnapshot(rc.path)
			if err != nil {
				return err
			}
			fix, err := templatefile.PlanFix(snap, rc.opts)
			if err != nil {
				return withCode(exitValidation, err)
			}
			report := fix.Report
			logger.WithFields(logrus.Fields{
				"updated": report.Updated(),
				"skipped": report.Skipped(),
			}).Debug("normalized select fields")

			summary := summarize("ok", rc.path, report)
			if !opts.json {
				printReport(out, report)
			}

			if opts.dryRun {
				summary.Status = "dry_run"
				summary.DryRun = true
				if opts.json {
					return writeJSONLine(out, summary)
				}
				fmt.Fprintf(out, "\nDry run: %d fields would be updated, nothing written\n", report.Updated())
				return nil
			}

			if err := fix.Save(); err != nil {
				return withCode(exitIO, err)
			}
			logger.Info("template file written")

			manifestDir := strings.TrimSpace(opts.manifestDir)
			if manifestDir == "" {
				manifestDir = rc.conf.Templates.ManifestDir
			}
			if manifestDir != "" && report.Changed() {
				manifest := fix.Manifest(time.Now())
				path, err := templatefile.WriteManifest(manifestDir, manifest)
				if err != nil {
					return withCode(exitIO, err)
				}
				summary.Manifest = path
				logger.WithFields(logrus.Fields{"run_id": manifest.RunID, "manifest": path}).Info("fix manifest written")
			}

			if opts.json {
				return writeJSONLine(out, summary)
			}
			if report.Changed() {
				fmt.Fprintf(out, "\n✅ Successfully updated %d fields with '%s' option\n", report.Updated(), report.Sentinel)
			} else {
				fmt.Fprintln(out, "\n⏭️  No fields needed updating")
			}
			if summary.Manifest != "" {
				fmt.Fprintf(out, "Manifest: %s\n", summary.Manifest)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", "", "Path to the hierarchical template JSON (default: RFQ_TEMPLATES_PATH)")
	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "Optional YAML profile overriding sentinel, select type and categories")
	cmd.Flags().StringVar(&opts.manifestDir, "manifest-dir", "", "Directory for the rollback manifest (default: RFQ_MANIFEST_DIR)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report changes without writing the file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print a single JSON summary line instead of the text report")
	return cmd
}
