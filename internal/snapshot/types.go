package snapshot

import "time"

// TimestampLayout matches Date.prototype.toISOString output.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ExportFileName is the name offered for the exported document.
const ExportFileName = "page_params.json"

// ParamMap maps a query parameter name to its last-seen value.
type ParamMap map[string]string

// Document is the result of one page scan.
// Field order and JSON names match the extension export format.
type Document struct {
	URL             string   `json:"url"`
	PageQueryParams ParamMap `json:"pageQueryParams"`
	Forms           []Form   `json:"forms"`
	LinksWithParams []Link   `json:"linksWithParams"`
	JSNames         NameSet  `json:"jsNames"`
	Timestamp       string   `json:"timestamp"`
}

// Form describes one <form> element
type Form struct {
	Method string  `json:"method"`
	Action string  `json:"action"`
	Inputs []Input `json:"inputs"`
}

// Input is a named form control (input, textarea or select)
type Input struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Link is an anchor whose resolved href carries a query string
type Link struct {
	Href   string   `json:"href"`
	Params ParamMap `json:"params"`
}

// FormatTimestamp renders t the way the in-page snapshot function does.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a document timestamp. RFC 3339 variants are accepted
// for snapshots produced by older exports.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// Normalize replaces nil collections with empty ones so the document
// serializes with [] and {} instead of null.
func (d *Document) Normalize() {
	if d.PageQueryParams == nil {
		d.PageQueryParams = ParamMap{}
	}
	if d.Forms == nil {
		d.Forms = []Form{}
	}
	for i := range d.Forms {
		if d.Forms[i].Inputs == nil {
			d.Forms[i].Inputs = []Input{}
		}
	}
	if d.LinksWithParams == nil {
		d.LinksWithParams = []Link{}
	}
	for i := range d.LinksWithParams {
		if d.LinksWithParams[i].Params == nil {
			d.LinksWithParams[i].Params = ParamMap{}
		}
	}
	if d.JSNames == nil {
		d.JSNames = NameSet{}
	}
}

// normalizedCopy returns a normalized document without touching d.
func (d *Document) normalizedCopy() Document {
	cp := *d
	cp.Forms = append([]Form(nil), d.Forms...)
	cp.LinksWithParams = append([]Link(nil), d.LinksWithParams...)
	cp.Normalize()
	return cp
}

// Normalized is Normalize on a copy; d is left as it was.
func (d *Document) Normalized() *Document {
	cp := d.normalizedCopy()
	return &cp
}

// InputCount returns the number of named inputs across all forms.
func (d *Document) InputCount() int {
	n := 0
	for _, f := range d.Forms {
		n += len(f.Inputs)
	}
	return n
}
