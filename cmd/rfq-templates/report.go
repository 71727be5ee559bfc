package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/zintra/rfq-templates/pkg/rfqtemplate"
)

var summaryRule = strings.Repeat("=", 60)

type reportSummary struct {
	Status   string `json:"status"`
	Path     string `json:"path"`
	Sentinel string `json:"sentinel"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
	DryRun   bool   `json:"dry_run"`
	Manifest string `json:"manifest,omitempty"`
}

func summarize(status, path string, report rfqtemplate.Report) reportSummary {
	return reportSummary{
		Status:   status,
		Path:     path,
		Sentinel: report.Sentinel,
		Updated:  report.Updated(),
		Skipped:  report.Skipped(),
		Total:    report.Total(),
	}
}

func printEntries(w io.Writer, report rfqtemplate.Report) {
	for _, e := range report.Entries {
		switch {
		case e.Status == rfqtemplate.StatusUpdated:
			fmt.Fprintf(w, "✅ Updated: %s → %s (now has %d options)\n", e.CategoryLabel, e.FieldName, e.OptionCount)
		case e.Reason == rfqtemplate.ReasonAlreadyPresent:
			fmt.Fprintf(w, "⏭️  Skipped:  %s → %s (already has '%s')\n", e.CategoryLabel, e.FieldName, report.Sentinel)
		default:
			fmt.Fprintf(w, "⏭️  Skipped:  %s → %s (no options)\n", e.CategoryLabel, e.FieldName)
		}
	}
}

func printSummary(w io.Writer, report rfqtemplate.Report) {
	fmt.Fprintf(w, "\n%s\n", summaryRule)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Updated: %d fields\n", report.Updated())
	fmt.Fprintf(w, "  Skipped: %d fields\n", report.Skipped())
	fmt.Fprintf(w, "  Total:   %d select fields processed\n", report.Total())
	fmt.Fprintln(w, summaryRule)
}

func printReport(w io.Writer, report rfqtemplate.Report) {
	printEntries(w, report)
	printSummary(w, report)
}
