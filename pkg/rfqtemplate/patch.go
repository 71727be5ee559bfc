package rfqtemplate

import (
	"bytes"
	"encoding/json"
)

// PatchOp is a single RFC 6902 operation.
type PatchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Patch returns the add operations that reproduce the updated entries of r
// on the raw document the report was computed from.
func (r Report) Patch() ([]PatchOp, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.Sentinel); err != nil {
		return nil, err
	}
	value := json.RawMessage(bytes.TrimSpace(buf.Bytes()))

	ops := make([]PatchOp, 0, r.Updated())
	for _, e := range r.Entries {
		if e.Status != StatusUpdated {
			continue
		}
		ops = append(ops, PatchOp{
			Op:    "add",
			Path:  e.Pointer() + "/-",
			Value: value,
		})
	}
	return ops, nil
}
