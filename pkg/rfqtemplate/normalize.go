package rfqtemplate

import "fmt"

const (
	DefaultSentinel   = "Other"
	DefaultSelectType = "select"
)

type Status string

const (
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
)

type SkipReason string

const (
	ReasonNone           SkipReason = ""
	ReasonAlreadyPresent SkipReason = "already_present"
	ReasonNoOptions      SkipReason = "no_options"
)

// Options tunes a normalization pass. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	Sentinel   string
	SelectType string
	// Categories restricts the pass to categories with these labels.
	// Empty means every category.
	Categories []string
}

func DefaultOptions() Options {
	return Options{
		Sentinel:   DefaultSentinel,
		SelectType: DefaultSelectType,
	}
}

func (o Options) withDefaults() Options {
	if o.Sentinel == "" {
		o.Sentinel = DefaultSentinel
	}
	if o.SelectType == "" {
		o.SelectType = DefaultSelectType
	}
	return o
}

func (o Options) includes(label string) bool {
	if len(o.Categories) == 0 {
		return true
	}
	for _, c := range o.Categories {
		if c == label {
			return true
		}
	}
	return false
}

// Entry is the outcome for a single select field.
type Entry struct {
	CategoryIndex int        `json:"category_index"`
	CategoryLabel string     `json:"category_label"`
	JobTypeIndex  int        `json:"job_type_index"`
	FieldIndex    int        `json:"field_index"`
	FieldName     string     `json:"field_name"`
	Status        Status     `json:"status"`
	Reason        SkipReason `json:"reason,omitempty"`
	OptionCount   int        `json:"option_count"`
}

// Pointer is the RFC 6901 pointer of the field's options array.
func (e Entry) Pointer() string {
	return fmt.Sprintf("/majorCategories/%d/jobTypes/%d/fields/%d/options", e.CategoryIndex, e.JobTypeIndex, e.FieldIndex)
}

// Report collects the entries of one normalization pass in document order.
type Report struct {
	Sentinel string  `json:"sentinel"`
	Entries  []Entry `json:"entries"`
}

func (r Report) Updated() int { return r.count(StatusUpdated) }

func (r Report) Skipped() int { return r.count(StatusSkipped) }

func (r Report) Total() int { return len(r.Entries) }

func (r Report) Changed() bool { return r.Updated() > 0 }

func (r Report) count(s Status) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == s {
			n++
		}
	}
	return n
}

// Normalize appends the sentinel to every select field whose non-empty option
// list lacks it. The document is mutated in place. Select fields with no
// options are reported as skipped and left empty.
func Normalize(doc *Document, opts Options) Report {
	opts = opts.withDefaults()
	report := Report{Sentinel: opts.Sentinel, Entries: []Entry{}}
	if doc == nil {
		return report
	}

	for ci := range doc.MajorCategories {
		cat := &doc.MajorCategories[ci]
		if !opts.includes(cat.Label) {
			continue
		}
		for ji := range cat.JobTypes {
			jt := &cat.JobTypes[ji]
			for fi := range jt.Fields {
				f := &jt.Fields[fi]
				if f.Type != opts.SelectType {
					continue
				}

				entry := Entry{
					CategoryIndex: ci,
					CategoryLabel: cat.DisplayLabel(),
					JobTypeIndex:  ji,
					FieldIndex:    fi,
					FieldName:     f.Name,
					Status:        StatusSkipped,
					OptionCount:   len(f.Options),
				}
				switch {
				case len(f.Options) == 0:
					entry.Reason = ReasonNoOptions
				case f.HasOption(opts.Sentinel):
					entry.Reason = ReasonAlreadyPresent
				default:
					f.Options = append(f.Options, opts.Sentinel)
					entry.Status = StatusUpdated
					entry.OptionCount = len(f.Options)
				}
				report.Entries = append(report.Entries, entry)
			}
		}
	}
	return report
}
