package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sidenote/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary followed by one section per document.
func (w *MarkdownWriter) Write(docs []*model.Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeSummary(md, docs)
	for _, doc := range docs {
		w.writeDocument(md, doc)
	}

	return len(md.String()), md.Build()
}

// WriteSummary outputs the summary table and alert only.
func (w *MarkdownWriter) WriteSummary(docs []*model.Document) (int, error) {
	md := markdown.NewMarkdown(w.output)
	w.writeSummary(md, docs)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, docs []*model.Document) {
	s := model.Summarize(docs)

	md.H1("Sidenote Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Documents", strconv.Itoa(s.Documents)},
			{"Sidenotes", strconv.Itoa(s.Sidenotes)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Warnings", strconv.Itoa(s.Warnings)},
			{"Cached", strconv.Itoa(s.Cached)},
		},
	})
	md.PlainText("")

	counts := severityCounts(docs)
	if counts[model.SeverityError]+counts[model.SeverityWarning]+counts[model.SeverityInfo] > 0 {
		w.writePieChart(md, counts)
	}

	switch {
	case s.Failed > 0:
		md.Cautionf("%d document(s) could not be rendered.", s.Failed)
	case s.Warnings > 0:
		md.Warningf("%d warning(s) found. Links in the output may be broken.", s.Warnings)
	default:
		md.Tip("All documents rendered cleanly.")
	}
	md.PlainText("")
}

func severityCounts(docs []*model.Document) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, d := range docs {
		for _, f := range d.Findings {
			counts[f.Severity]++
		}
	}
	return counts
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Findings by Severity"),
		piechart.WithShowData(true),
	)
	for _, sev := range []model.Severity{model.SeverityError, model.SeverityWarning, model.SeverityInfo} {
		if counts[sev] > 0 {
			chart.LabelAndIntValue(sev.String(), uint64(counts[sev])) //nolint:gosec // counts are never negative
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeDocument(md *markdown.Markdown, doc *model.Document) {
	md.H2("`" + doc.Path + "`")
	md.PlainText("")

	if doc.OutputPath != "" {
		md.PlainTextf("Output: `%s`", doc.OutputPath)
		md.PlainText("")
	}

	if len(doc.Sidenotes) == 0 {
		md.PlainText("No sidenotes.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(doc.Sidenotes))
		for i, n := range doc.Sidenotes {
			rows[i] = []string{
				strconv.Itoa(n.Number),
				"`#fn" + n.Anchor + "`",
				orDash(truncateString(oneLine(n.Content), 60)),
				strconv.Itoa(n.References),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Anchor", "Content", "References"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(doc.Findings) == 0 {
		return
	}

	md.PlainText("### Findings")
	md.PlainText("")
	rows := make([][]string, len(doc.Findings))
	for i, f := range doc.Findings {
		rows[i] = []string{
			f.Severity.String(),
			f.Type,
			truncateString(f.Message, 60),
			orDash(model.GetFindingInfo(f.Type).Recommendation),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Type", "Message", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range doc.Findings {
		if impact := model.GetFindingInfo(f.Type).Impact; impact != "" {
			md.Details(f.Type, impact)
		}
	}
	md.PlainText("")
}
