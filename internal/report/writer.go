package report

import (
	"io"
	"unicode/utf8"

	"github.com/nao1215/sidenote/internal/model"
)

// Writer writes a report about a set of rendered documents.
type Writer interface {
	// Write outputs the report for docs, including their sidenotes and
	// findings. It returns the number of bytes written.
	Write(docs []*model.Document) (int, error)

	// WriteSummary outputs only the totals of docs.
	WriteSummary(docs []*model.Document) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops at the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers and returns the total
// bytes written.
func (m *MultiWriter) Write(docs []*model.Document) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(docs) })
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(docs []*model.Document) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSummary(docs) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString shortens s to maxLen runes with a trailing ellipsis.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
