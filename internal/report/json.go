package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sidenote/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string

	// version is recorded in the report envelope when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the envelope written by JSONWriter.Write.
type JSONReport struct {
	Version   string            `json:"version,omitempty"`
	Summary   model.Summary     `json:"summary"`
	Documents []*model.Document `json:"documents"`
}

// Write outputs the documents and their summary.
func (w *JSONWriter) Write(docs []*model.Document) (int, error) {
	if docs == nil {
		docs = []*model.Document{}
	}
	return w.writeJSON(JSONReport{
		Version:   w.version,
		Summary:   model.Summarize(docs),
		Documents: docs,
	})
}

// WriteSummary outputs only the summary object.
func (w *JSONWriter) WriteSummary(docs []*model.Document) (int, error) {
	return w.writeJSON(model.Summarize(docs))
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
