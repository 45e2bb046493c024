package model

import (
	"time"
)

// Document is the result of rendering one input.
type Document struct {
	// Path is the input path, or "-" for stdin.
	Path string `json:"path"`

	// OutputPath is where the HTML was written. Empty when written to stdout
	// or when rendering failed.
	OutputPath string `json:"output_path,omitempty"`

	// DocID is the element id prefix used for the document.
	DocID string `json:"doc_id,omitempty"`

	// Source is the markdown input after optional normalization.
	Source string `json:"-"`

	// HTML is the rendered output.
	HTML string `json:"-"`

	// Sidenotes lists the relocated sidenotes in id order.
	Sidenotes []Sidenote `json:"sidenotes"`

	// Findings holds problems found while rendering or checking.
	Findings []Finding `json:"findings,omitempty"`

	// Steps lists the pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`

	// Cached is true when HTML and Sidenotes came from the render cache.
	Cached bool `json:"cached"`

	// RenderedAt is the time the document was processed.
	RenderedAt time.Time `json:"rendered_at"`

	// Duration is the processing time of the document.
	Duration time.Duration `json:"duration_ns"`
}

// NewDocument returns a Document for the input at path.
func NewDocument(path string) *Document {
	return &Document{
		Path:       path,
		Sidenotes:  []Sidenote{},
		RenderedAt: time.Now(),
	}
}

// Sidenote describes one relocated sidenote.
type Sidenote struct {
	// ID is the 0-based id in first-occurrence order.
	ID int `json:"id"`

	// Number is the displayed number.
	Number int `json:"number"`

	// Anchor is the element id stem, e.g. "1" or "-post-1".
	Anchor string `json:"anchor"`

	// Content is the raw markdown of the sidenote body.
	Content string `json:"content"`

	// References is the number of back-references in the block.
	References int `json:"references"`
}

// Finding is a problem found in a document.
type Finding struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	// Value is the offending value, such as a link target.
	Value string `json:"value,omitempty"`
}

// AddFinding records a finding of the given type with its default severity.
func (d *Document) AddFinding(findingType, message, value string) {
	d.Findings = append(d.Findings, Finding{
		Type:     findingType,
		Severity: GetSeverity(findingType),
		Message:  message,
		Value:    value,
	})
}

// Failed reports whether the document has an error finding.
func (d *Document) Failed() bool {
	return d.CountBySeverity(SeverityError) > 0
}

// CountBySeverity returns the number of findings at severity s.
func (d *Document) CountBySeverity(s Severity) int {
	n := 0
	for _, f := range d.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Summary aggregates a set of documents for report footers.
type Summary struct {
	Documents int `json:"documents"`
	Failed    int `json:"failed"`
	Cached    int `json:"cached"`
	Sidenotes int `json:"sidenotes"`
	Warnings  int `json:"warnings"`
}

// Summarize counts documents, failures and sidenotes.
func Summarize(docs []*Document) Summary {
	var s Summary
	for _, d := range docs {
		s.Documents++
		if d.Failed() {
			s.Failed++
		}
		if d.Cached {
			s.Cached++
		}
		s.Sidenotes += len(d.Sidenotes)
		s.Warnings += d.CountBySeverity(SeverityWarning)
	}
	return s
}
