package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/entityscan/internal/model"
)

// MarkdownWriter outputs a GitHub-flavored Markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders e as Markdown.
func (w *MarkdownWriter) Write(e *model.Extraction) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, e)
	w.writeEntities(md, e)
	if !e.IsEmpty() {
		w.writeSummary(md, e.Summary())
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, e *model.Extraction) {
	md.H1("Entity Extraction Report")
	md.PlainText("")

	rows := [][]string{
		{"Source", "`" + e.Source.String() + "`"},
		{"Date", e.DateExtracted.Format("2006-01-02 15:04:05 MST")},
	}
	if e.Lang != "" {
		rows = append(rows, []string{"Language", e.Lang})
	}
	if e.TextDigest != "" {
		rows = append(rows, []string{"Text SHA3-256", "`" + shortDigest(e.TextDigest) + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeEntities(md *markdown.Markdown, e *model.Extraction) {
	md.H2("Entities")
	md.PlainText("")

	if e.IsEmpty() {
		md.Note(NoEntitiesMessage)
		md.PlainText("")
		return
	}

	md.PlainText(FoundMessage(len(e.Rows)))
	md.PlainText("")

	rows := make([][]string, len(e.Rows))
	for i, r := range e.Rows {
		cells := rowCells(r)
		cells[0] = escapeCell(cells[0])
		cells[1] = escapeCell(cells[1])
		if r.HasLink() {
			cells[3] = markdown.Link(shortLink(r.Link), r.Link)
		}
		rows[i] = cells
	}
	md.Table(markdown.TableSet{
		Header: tableHeader,
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Wikidata links", strconv.Itoa(s.Wikidata)},
			{"Other links", strconv.Itoa(s.Fallback)},
			{"No link", strconv.Itoa(s.Unlinked)},
			{"Mean confidence", formatConfidence(s.MeanConfidence)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Confidence Distribution"),
		piechart.WithShowData(true),
	)
	if s.High > 0 {
		chart.LabelAndIntValue(model.BandHigh.String(), uint64(s.High))
	}
	if s.Medium > 0 {
		chart.LabelAndIntValue(model.BandMedium.String(), uint64(s.Medium))
	}
	if s.Low > 0 {
		chart.LabelAndIntValue(model.BandLow.String(), uint64(s.Low))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	if s.Unlinked > 0 {
		md.Importantf("%d entit(ies) have no Wikidata or URI link.", s.Unlinked)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [entityscan](https://github.com/nao1215/entityscan)*")
}

// escapeCell keeps pipes and newlines from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// shortLink drops the scheme for display.
func shortLink(link string) string {
	if i := strings.Index(link, "://"); i >= 0 {
		return link[i+3:]
	}
	return link
}

// shortDigest returns the first 16 hex characters of a digest.
func shortDigest(d string) string {
	if len(d) <= 16 {
		return d
	}
	return d[:16]
}
