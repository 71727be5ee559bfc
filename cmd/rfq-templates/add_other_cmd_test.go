package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTemplates = `{
  "version": 2,
  "majorCategories": [
    {
      "label": "Fabrication",
      "jobTypes": [
        {
          "label": "Welding",
          "fields": [
            {"name": "Material", "type": "select", "options": ["Steel", "Aluminum"]},
            {"name": "Notes", "type": "text"},
            {"name": "Shape", "type": "select", "options": []}
          ]
        }
      ]
    },
    {
      "label": "Coating",
      "jobTypes": [
        {
          "label": "Finishing",
          "fields": [
            {"name": "Finish", "type": "select", "options": ["Anodized", "Other", "Raw"]}
          ]
        }
      ]
    }
  ]
}`

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "silent")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("RFQ_MANIFEST_DIR", "")
	t.Setenv("RFQ_SENTINEL_OPTION", "Other")
	t.Setenv("RFQ_SELECT_FIELD_TYPE", "select")
	t.Setenv("RFQ_TEMPLATES_PATH", "")
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rfq-templates-v2-hierarchical.json")
	if err := os.WriteFile(path, []byte(sampleTemplates), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func optionsOf(t *testing.T, raw string, category, field int) []string {
	t.Helper()
	var doc struct {
		MajorCategories []struct {
			JobTypes []struct {
				Fields []struct {
					Options []string `json:"options"`
				} `json:"fields"`
			} `json:"jobTypes"`
		} `json:"majorCategories"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return doc.MajorCategories[category].JobTypes[0].Fields[field].Options
}

func TestAddOther_UpdatesFileAndReports(t *testing.T) {
	setupEnv(t)
	path := writeSample(t)

	out, err := runCLI(t, "add-other", "--path", path)
	if err != nil {
		t.Fatalf("add-other: %v", err)
	}

	for _, want := range []string{
		"Processing: " + path,
		"✅ Updated: Fabrication → Material (now has 3 options)",
		"⏭️  Skipped:  Fabrication → Shape (no options)",
		"⏭️  Skipped:  Coating → Finish (already has 'Other')",
		"  Updated: 1 fields",
		"  Skipped: 2 fields",
		"  Total:   3 select fields processed",
		"✅ Successfully updated 1 fields with 'Other' option",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Notes") {
		t.Fatalf("text field must not be reported:\n%s", out)
	}

	written := readFile(t, path)
	if !strings.HasSuffix(written, "}\n") || strings.HasSuffix(written, "\n\n") {
		t.Fatalf("expected exactly one trailing newline, got %q", written[len(written)-5:])
	}
	if !strings.HasPrefix(written, "{\n  \"version\": 2,\n  \"majorCategories\": [") {
		t.Fatalf("unknown keys or key order lost:\n%s", written)
	}
	if got := optionsOf(t, written, 0, 0); strings.Join(got, ",") != "Steel,Aluminum,Other" {
		t.Fatalf("material options: %v", got)
	}
	if got := optionsOf(t, written, 0, 2); len(got) != 0 {
		t.Fatalf("empty select must stay empty: %v", got)
	}
	if got := optionsOf(t, written, 1, 0); strings.Join(got, ",") != "Anodized,Other,Raw" {
		t.Fatalf("finish options: %v", got)
	}

	out, err = runCLI(t, "add-other", "--path", path)
	if err != nil {
		t.Fatalf("second add-other: %v", err)
	}
	if !strings.Contains(out, "No fields needed updating") {
		t.Fatalf("second run should be a no-op:\n%s", out)
	}
	if readFile(t, path) != written {
		t.Fatalf("second run changed the file")
	}
}

func TestAddOther_DryRunJSON(t *testing.T) {
	setupEnv(t)
	path := writeSample(t)

	out, err := runCLI(t, "add-other", "--path", path, "--dry-run", "--json")
	if err != nil {
		t.Fatalf("add-other: %v", err)
	}
	var summary reportSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("summary json invalid: %v\n%s", err, out)
	}
	if summary.Status != "dry_run" || !summary.DryRun {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Updated != 1 || summary.Skipped != 2 || summary.Total != 3 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if readFile(t, path) != sampleTemplates {
		t.Fatalf("dry run must not write")
	}
}

func TestAddOther_MissingFile(t *testing.T) {
	setupEnv(t)
	missing := filepath.Join(t.TempDir(), "nope.json")

	_, err := runCLI(t, "add-other", "--path", missing)
	if err == nil {
		t.Fatalf("expected error")
	}
	if exitCode(err) != exitUsage {
		t.Fatalf("expected exitUsage, got %d: %v", exitCode(err), err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Fatalf("error must name the path: %v", err)
	}
}

func TestAddOther_MalformedFile(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"majorCategories": [{"jobTypes": 3}]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := runCLI(t, "add-other", "--path", path)
	if exitCode(err) != exitValidation {
		t.Fatalf("expected exitValidation, got %d: %v", exitCode(err), err)
	}
	if readFile(t, path) != `{"majorCategories": [{"jobTypes": 3}]}` {
		t.Fatalf("malformed input must not be rewritten")
	}
}

func TestAddOther_ProfileRestrictsCategories(t *testing.T) {
	setupEnv(t)
	path := writeSample(t)
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(profile, []byte("categories:\n  - Coating\n"), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	out, err := runCLI(t, "add-other", "--path", path, "--profile", profile)
	if err != nil {
		t.Fatalf("add-other: %v", err)
	}
	if strings.Contains(out, "Fabrication") {
		t.Fatalf("filtered category reported:\n%s", out)
	}
	if got := optionsOf(t, readFile(t, path), 0, 0); strings.Join(got, ",") != "Steel,Aluminum" {
		t.Fatalf("filtered category modified: %v", got)
	}
}

func TestCheck_ExitCodes(t *testing.T) {
	setupEnv(t)
	path := writeSample(t)

	out, err := runCLI(t, "check", "--path", path)
	if exitCode(err) != exitPending {
		t.Fatalf("expected exitPending, got %d: %v", exitCode(err), err)
	}
	if !strings.Contains(out, "✅ Updated: Fabrication → Material") {
		t.Fatalf("check should report pending updates:\n%s", out)
	}
	if readFile(t, path) != sampleTemplates {
		t.Fatalf("check must not write")
	}

	if _, err := runCLI(t, "add-other", "--path", path); err != nil {
		t.Fatalf("add-other: %v", err)
	}
	if _, err := runCLI(t, "check", "--path", path, "--json"); err != nil {
		t.Fatalf("check after fix: %v", err)
	}
}

func TestUsageErrors(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "add-other")
	if exitCode(err) != exitUsage {
		t.Fatalf("expected exitUsage without a path, got %d: %v", exitCode(err), err)
	}

	t.Setenv("LOG_LEVEL", "loud")
	_, err = runCLI(t, "check", "--path", "x.json")
	if exitCode(err) != exitUsage {
		t.Fatalf("expected exitUsage for bad config, got %d: %v", exitCode(err), err)
	}
}
