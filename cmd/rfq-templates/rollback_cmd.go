package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zintra/rfq-templates/pkg/templatefile"
)

type rollbackOptions struct {
	manifestPath string
	path         string
	yes          bool
}

func newRollbackCmd() *cobra.Command {
	var opts rollbackOptions

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Restore the template file recorded in a fix manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			if stringsTrim(opts.manifestPath) == "" {
				return withCode(exitUsage, fmt.Errorf("--manifest is required"))
			}
			rc, err := loadRunContext(templateFlags{path: opts.path})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			manifest, err := templatefile.ReadManifest(opts.manifestPath)
			switch {
			case err == nil:
			case is(err, templatefile.ErrNotFound):
				return withCode(exitUsage, err)
			default:
				return withCode(exitValidation, err)
			}

			path := manifest.Path
			if stringsTrim(opts.path) != "" {
				path = stringsTrim(opts.path)
			}
			snap, err := loadSnapshot(path)
			if err != nil {
				return err
			}
			restored, err := templatefile.PlanRollback(snap, manifest)
			if err != nil {
				if is(err, templatefile.ErrChecksumMismatch) {
					return withCode(exitSafetyNet, err)
				}
				return withCode(exitValidation, err)
			}

			logger := rc.logger.WithField("run_id", manifest.RunID).WithField("path", path)
			identical := manifest.MatchesBefore(restored)
			if !identical {
				logger.WithField("before_sha256", manifest.BeforeSHA256).
					Warn("restored content matches the original document but not its original formatting")
			}

			type summary struct {
				Status    string `json:"status"`
				RunID     string `json:"run_id"`
				Path      string `json:"path"`
				DryRun    bool   `json:"dry_run"`
				Restored  int    `json:"restored_fields"`
				Identical bool   `json:"byte_identical"`
			}
			s := summary{
				Status:    "ok",
				RunID:     manifest.RunID.String(),
				Path:      path,
				DryRun:    !opts.yes,
				Restored:  manifest.Summary.Updated,
				Identical: identical,
			}
			if !opts.yes {
				s.Status = "dry_run"
				logger.Info("rollback dry run; pass --yes to write")
				return writeJSONLine(out, s)
			}

			if err := templatefile.Save(path, restored, snap.Mode); err != nil {
				return withCode(exitIO, err)
			}
			logger.Info("template file restored")
			return writeJSONLine(out, s)
		},
	}

	cmd.Flags().StringVar(&opts.manifestPath, "manifest", "", "Path to rfq_templates_fix_manifest.<run_id>.json (required)")
	cmd.Flags().StringVar(&opts.path, "path", "", "Template file to restore (default: path recorded in the manifest)")
	cmd.Flags().BoolVar(&opts.yes, "yes", false, "Write the restored file (default is dry-run)")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func stringsTrim(v string) string { return strings.TrimSpace(v) }
