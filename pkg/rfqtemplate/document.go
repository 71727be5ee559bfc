// Package rfqtemplate models the hierarchical RFQ template document
// (category → job type → field) and normalizes the option lists of its
// select fields.
package rfqtemplate

import (
	"bytes"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when the input does not decode into a Document.
var ErrMalformed = errors.New("malformed rfq template document")

const unknownCategoryLabel = "Unknown"

type Document struct {
	MajorCategories []Category `json:"majorCategories"`
}

type Category struct {
	Label    string    `json:"label"`
	JobTypes []JobType `json:"jobTypes"`
}

// DisplayLabel is the label used in reports.
func (c Category) DisplayLabel() string {
	if c.Label == "" {
		return unknownCategoryLabel
	}
	return c.Label
}

type JobType struct {
	Fields []Field `json:"fields"`
}

type Field struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// HasOption reports whether opt is present anywhere in the option list.
func (f Field) HasOption(opt string) bool {
	for _, o := range f.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Decode parses raw into a Document. Keys are matched exactly, the way the
// JSON pointers of the fix patch address them, so "Options" or "TYPE" are
// ignored like any other key outside the model. Null sequences decode as empty
// ones.
func Decode(raw []byte) (*Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.Wrap(ErrMalformed, "empty input")
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.Wrap(ErrMalformed, "invalid json")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, errors.Wrap(ErrMalformed, "expected json object at top level")
	}

	var doc Document
	err := eachObject(root.Get("majorCategories"), "/majorCategories", func(c gjson.Result, at string) error {
		cat := Category{}
		var err error
		if cat.Label, err = stringAt(c, "label", at); err != nil {
			return err
		}
		err = eachObject(c.Get("jobTypes"), at+"/jobTypes", func(j gjson.Result, at string) error {
			jt := JobType{}
			err := eachObject(j.Get("fields"), at+"/fields", func(f gjson.Result, at string) error {
				field, err := decodeField(f, at)
				if err != nil {
					return err
				}
				jt.Fields = append(jt.Fields, field)
				return nil
			})
			cat.JobTypes = append(cat.JobTypes, jt)
			return err
		})
		doc.MajorCategories = append(doc.MajorCategories, cat)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeField(f gjson.Result, at string) (Field, error) {
	var (
		field Field
		err   error
	)
	if field.Name, err = stringAt(f, "name", at); err != nil {
		return Field{}, err
	}
	if field.Type, err = stringAt(f, "type", at); err != nil {
		return Field{}, err
	}

	opts := f.Get("options")
	switch {
	case !opts.Exists(), opts.Type == gjson.Null:
		return field, nil
	case !opts.IsArray():
		return Field{}, errors.Wrapf(ErrMalformed, "%s/options: expected array, got %s", at, opts.Type)
	}
	field.Options = []string{}
	for i, o := range opts.Array() {
		if o.Type != gjson.String {
			return Field{}, errors.Wrapf(ErrMalformed, "%s/options/%d: expected string, got %s", at, i, o.Type)
		}
		field.Options = append(field.Options, o.Str)
	}
	return field, nil
}

// eachObject calls fn for every element of an array of objects. A missing or
// null array is empty; null elements decode as zero values.
func eachObject(r gjson.Result, at string, fn func(v gjson.Result, at string) error) error {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if !r.IsArray() {
		return errors.Wrapf(ErrMalformed, "%s: expected array, got %s", at, r.Type)
	}
	for i, v := range r.Array() {
		elemAt := at + "/" + strconv.Itoa(i)
		if v.Type != gjson.Null && !v.IsObject() {
			return errors.Wrapf(ErrMalformed, "%s: expected object, got %s", elemAt, v.Type)
		}
		if err := fn(v, elemAt); err != nil {
			return err
		}
	}
	return nil
}

func stringAt(obj gjson.Result, key, at string) (string, error) {
	v := obj.Get(key)
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return "", nil
	case v.Type == gjson.String:
		return v.Str, nil
	}
	return "", errors.Wrapf(ErrMalformed, "%s/%s: expected string, got %s", at, key, v.Type)
}
