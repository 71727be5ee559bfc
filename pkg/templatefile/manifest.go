package templatefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

const ManifestSchemaVersion = 1

var ErrInvalidManifest = errors.New("invalid fix manifest")

type ManifestSummary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Manifest records one applied normalization so it can be rolled back.
type Manifest struct {
	SchemaVersion int             `json:"schema_version"`
	RunID         uuid.UUID       `json:"run_id"`
	Path          string          `json:"path"`
	AppliedAt     time.Time       `json:"applied_at"`
	Sentinel      string          `json:"sentinel"`
	BeforeSHA256  string          `json:"before_sha256"`
	AfterSHA256   string          `json:"after_sha256"`
	Forward       json.RawMessage `json:"forward_patch"`
	Reverse       json.RawMessage `json:"reverse_patch"`
	Summary       ManifestSummary `json:"summary"`
}

func (m *Manifest) Validate() error {
	if m == nil {
		return errors.Wrap(ErrInvalidManifest, "manifest is nil")
	}
	if m.SchemaVersion != ManifestSchemaVersion {
		return errors.Wrapf(ErrInvalidManifest, "schema_version=%d is unsupported", m.SchemaVersion)
	}
	if m.RunID == uuid.Nil {
		return errors.Wrap(ErrInvalidManifest, "run_id is required")
	}
	if strings.TrimSpace(m.Path) == "" {
		return errors.Wrap(ErrInvalidManifest, "path is required")
	}
	if m.AppliedAt.IsZero() {
		return errors.Wrap(ErrInvalidManifest, "applied_at is required")
	}
	if m.BeforeSHA256 == "" || m.AfterSHA256 == "" {
		return errors.Wrap(ErrInvalidManifest, "before_sha256 and after_sha256 are required")
	}
	if len(bytes.TrimSpace(m.Reverse)) == 0 {
		return errors.Wrap(ErrInvalidManifest, "reverse_patch is required")
	}
	var ops []json.RawMessage
	if err := json.Unmarshal(m.Reverse, &ops); err != nil {
		return errors.Wrapf(ErrInvalidManifest, "reverse_patch: %v", err)
	}
	return nil
}

// MatchesBefore reports whether raw is byte-identical to the file the fix was
// applied to. A rollback restores content in the canonical layout, so a file
// that was not already formatted comes back equal but not identical.
func (m *Manifest) MatchesBefore(raw []byte) bool {
	return Checksum(raw) == m.BeforeSHA256
}

// ManifestFileName is the file name used for a manifest of runID.
func ManifestFileName(runID uuid.UUID) string {
	return fmt.Sprintf("rfq_templates_fix_manifest.%s.json", runID)
}

// WriteManifest stores m in dir and returns the file path.
func WriteManifest(dir string, m *Manifest) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "mkdir %s", dir)
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode manifest")
	}
	path := filepath.Join(dir, ManifestFileName(m.RunID))
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// ReadManifest loads and validates the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrapf(ErrInvalidManifest, "decode %s: %v", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
