package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sidenote/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty lists documents that have neither sidenotes nor findings.
	showEmpty bool

	// verbose adds sidenote contents and finding explanations.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list documents with nothing to
// report.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs every document with its sidenotes and findings.
func (w *SimpleWriter) Write(docs []*model.Document) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	w.writeSummary(&sb, model.Summarize(docs))
	for _, doc := range docs {
		w.writeDocument(&sb, doc)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteSummary outputs a one-line total, suitable after a render run.
func (w *SimpleWriter) WriteSummary(docs []*model.Document) (int, error) {
	s := model.Summarize(docs)
	line := fmt.Sprintf("%d document(s), %d sidenote(s), %d failed, %d warning(s), %d cached\n",
		s.Documents, s.Sidenotes, s.Failed, s.Warnings, s.Cached)
	return io.WriteString(w.output, line)
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          SIDENOTE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, s model.Summary) {
	fmt.Fprintf(sb, "  Documents: %d\n", s.Documents)
	fmt.Fprintf(sb, "  Sidenotes: %d\n", s.Sidenotes)
	fmt.Fprintf(sb, "  Failed:    %d\n", s.Failed)
	fmt.Fprintf(sb, "  Warnings:  %d\n", s.Warnings)
	fmt.Fprintf(sb, "  Cached:    %d\n", s.Cached)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDocument(sb *strings.Builder, doc *model.Document) {
	if len(doc.Sidenotes) == 0 && len(doc.Findings) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(doc.Path)
	if doc.OutputPath != "" {
		sb.WriteString(" -> " + doc.OutputPath)
	}
	if doc.Cached {
		sb.WriteString(" (cached)")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, n := range doc.Sidenotes {
		fmt.Fprintf(sb, "  [%d] #fn%s", n.Number, n.Anchor)
		if n.References > 1 {
			fmt.Fprintf(sb, " (%d references)", n.References)
		}
		sb.WriteString("\n")
		if w.verbose && n.Content != "" {
			fmt.Fprintf(sb, "      %s\n", truncateString(oneLine(n.Content), 60))
		}
	}

	for _, f := range doc.Findings {
		fmt.Fprintf(sb, "  [%s] %s: %s\n", severityIndicator(f.Severity), f.Type, f.Message)
		if w.verbose {
			if info := model.GetFindingInfo(f.Type); info.Recommendation != "" {
				fmt.Fprintf(sb, "      %s\n", info.Recommendation)
			}
		}
	}
	sb.WriteString("\n")
}

func severityIndicator(s model.Severity) string {
	switch s {
	case model.SeverityError:
		return "!!"
	case model.SeverityWarning:
		return "!"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
