// Package templatefile loads and saves the RFQ template JSON file. Changes
// are applied to the raw bytes as JSON patches so keys outside the typed
// model, key order and non-ASCII text survive a rewrite untouched.
package templatefile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-faster/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	jsondiff "github.com/wI2L/jsondiff"

	"github.com/zintra/rfq-templates/pkg/rfqtemplate"
)

var (
	ErrNotFound     = errors.New("template file not found")
	ErrMalformed    = rfqtemplate.ErrMalformed
	ErrVerification = errors.New("patched document failed verification")
)

const defaultFileMode fs.FileMode = 0o644

var formatOptions = &pretty.Options{
	// Width 0 keeps every array element on its own line.
	Width:    0,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Snapshot is the file content as read from disk.
type Snapshot struct {
	Path     string
	Raw      []byte
	Mode     fs.FileMode
	Document *rfqtemplate.Document
}

// Load reads and decodes the template file at path.
func Load(path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return nil, errors.Wrapf(ErrNotFound, "%s is a directory", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if !json.Valid(raw) {
		return nil, errors.Wrapf(ErrMalformed, "%s: invalid json", path)
	}
	doc, err := rfqtemplate.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return &Snapshot{
		Path:     path,
		Raw:      raw,
		Mode:     info.Mode().Perm(),
		Document: doc,
	}, nil
}

func (s *Snapshot) Checksum() string {
	return Checksum(s.Raw)
}

// Checksum is the hex SHA-256 of raw.
func Checksum(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// EncodePatch serializes ops without HTML escaping.
func EncodePatch(ops []rfqtemplate.PatchOp) (json.RawMessage, error) {
	if ops == nil {
		ops = []rfqtemplate.PatchOp{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ops); err != nil {
		return nil, errors.Wrap(err, "encode patch")
	}
	return json.RawMessage(bytes.TrimSpace(buf.Bytes())), nil
}

// ApplyPatch applies an RFC 6902 patch to raw and returns the formatted
// result.
func ApplyPatch(raw []byte, patch json.RawMessage) ([]byte, error) {
	p, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, errors.Wrap(err, "decode patch")
	}
	if len(p) == 0 {
		return Format(raw), nil
	}
	opts := jsonpatch.NewApplyOptions()
	opts.EscapeHTML = false
	out, err := p.ApplyWithOptions(raw, opts)
	if err != nil {
		return nil, errors.Wrap(err, "apply patch")
	}
	return Format(out), nil
}

// Format indents raw with two spaces, keeps the source key order and ends
// the output with exactly one newline.
func Format(raw []byte) []byte {
	return pretty.PrettyOptions(raw, formatOptions)
}

// ReversePatch returns the patch that turns after back into before.
func ReversePatch(before, after []byte) (json.RawMessage, error) {
	patch, err := jsondiff.CompareJSON(after, before)
	if err != nil {
		return nil, errors.Wrap(err, "diff")
	}
	if patch == nil {
		return json.RawMessage(`[]`), nil
	}
	b, err := json.Marshal(patch)
	if err != nil {
		return nil, errors.Wrap(err, "encode reverse patch")
	}
	return b, nil
}

// Save writes raw to path through a temporary file in the same directory.
func Save(path string, raw []byte, mode fs.FileMode) error {
	if mode == 0 {
		mode = defaultFileMode
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "chmod %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrapf(err, "rename %s", path)
	}
	return nil
}

// Verify checks the select fields of report against the patched document.
// Updated fields must end with their only copy of the sentinel and fields
// without options must still be empty.
func Verify(raw []byte, report rfqtemplate.Report) error {
	for _, e := range report.Entries {
		path := fmt.Sprintf("majorCategories.%d.jobTypes.%d.fields.%d.options", e.CategoryIndex, e.JobTypeIndex, e.FieldIndex)
		options := gjson.GetBytes(raw, path).Array()

		if e.Reason == rfqtemplate.ReasonNoOptions {
			if len(options) != 0 {
				return errors.Wrapf(ErrVerification, "%s → %s: expected no options, got %d", e.CategoryLabel, e.FieldName, len(options))
			}
			continue
		}

		seen := 0
		for _, o := range options {
			if o.Type == gjson.String && o.Str == report.Sentinel {
				seen++
			}
		}
		if seen == 0 {
			return errors.Wrapf(ErrVerification, "%s → %s: %q missing", e.CategoryLabel, e.FieldName, report.Sentinel)
		}
		if e.Status == rfqtemplate.StatusUpdated {
			if seen != 1 || len(options) != e.OptionCount || options[len(options)-1].Str != report.Sentinel {
				return errors.Wrapf(ErrVerification, "%s → %s: %q not appended", e.CategoryLabel, e.FieldName, report.Sentinel)
			}
		}
	}
	return nil
}
