package templatefile

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/zintra/rfq-templates/pkg/rfqtemplate"
)

var ErrChecksumMismatch = errors.New("template file changed since the manifest was written")

// Fix is a normalization pass computed against a snapshot but not yet saved.
type Fix struct {
	Snapshot *Snapshot
	Report   rfqtemplate.Report
	After    []byte
	Forward  json.RawMessage
	Reverse  json.RawMessage
}

// PlanFix normalizes the snapshot's document and renders the patched file
// content. Nothing is written.
func PlanFix(s *Snapshot, opts rfqtemplate.Options) (*Fix, error) {
	report := rfqtemplate.Normalize(s.Document, opts)

	ops, err := report.Patch()
	if err != nil {
		return nil, errors.Wrap(err, "build patch")
	}
	forward, err := EncodePatch(ops)
	if err != nil {
		return nil, err
	}
	after, err := ApplyPatch(s.Raw, forward)
	if err != nil {
		return nil, err
	}
	if err := Verify(after, report); err != nil {
		return nil, err
	}
	reverse, err := ReversePatch(s.Raw, after)
	if err != nil {
		return nil, err
	}
	return &Fix{
		Snapshot: s,
		Report:   report,
		After:    after,
		Forward:  forward,
		Reverse:  reverse,
	}, nil
}

// Save writes the patched content back to the snapshot's path.
func (f *Fix) Save() error {
	return Save(f.Snapshot.Path, f.After, f.Snapshot.Mode)
}

// Manifest describes the fix for a later rollback.
func (f *Fix) Manifest(now time.Time) *Manifest {
	return &Manifest{
		SchemaVersion: ManifestSchemaVersion,
		RunID:         uuid.New(),
		Path:          f.Snapshot.Path,
		AppliedAt:     now.UTC(),
		Sentinel:      f.Report.Sentinel,
		BeforeSHA256:  f.Snapshot.Checksum(),
		AfterSHA256:   Checksum(f.After),
		Forward:       f.Forward,
		Reverse:       f.Reverse,
		Summary: ManifestSummary{
			Updated: f.Report.Updated(),
			Skipped: f.Report.Skipped(),
			Total:   f.Report.Total(),
		},
	}
}

// PlanRollback renders the content that restores the file recorded in m.
// The file must still match the manifest's after checksum. The result is
// formatted like every saved file; use Manifest.MatchesBefore to tell whether
// it reproduces the original bytes.
func PlanRollback(s *Snapshot, m *Manifest) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if got := s.Checksum(); got != m.AfterSHA256 {
		return nil, errors.Wrapf(ErrChecksumMismatch, "%s: sha256 %s, manifest expects %s", s.Path, got, m.AfterSHA256)
	}
	restored, err := ApplyPatch(s.Raw, m.Reverse)
	if err != nil {
		return nil, err
	}
	return restored, nil
}
