package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nao1215/entityscan/internal/model"
)

// SimpleWriter outputs a plain text table for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds source, language and quota details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders e as a bordered table preceded by "Found N entities:".
func (w *SimpleWriter) Write(e *model.Extraction) (int, error) {
	var sb strings.Builder

	if w.verbose {
		w.writeDetails(&sb, e)
	}

	if e.IsEmpty() {
		sb.WriteString(NoEntitiesMessage)
		sb.WriteString("\n")
		return io.WriteString(w.output, sb.String())
	}

	sb.WriteString(FoundMessage(len(e.Rows)))
	sb.WriteString("\n")
	sb.WriteString(renderTable(e))
	sb.WriteString("\n")

	if w.verbose {
		w.writeSummary(&sb, e.Summary())
	}

	return io.WriteString(w.output, sb.String())
}

// writeDetails writes request metadata shown in verbose mode.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, e *model.Extraction) {
	fmt.Fprintf(sb, "Source:    %s\n", e.Source)
	if e.Lang != "" {
		fmt.Fprintf(sb, "Language:  %s\n", e.Lang)
	}
	fmt.Fprintf(sb, "Extracted: %s (%s)\n",
		e.DateExtracted.Format("2006-01-02 15:04:05 MST"),
		e.Elapsed.Round(time.Millisecond))
	if e.UnitsLeft >= 0 {
		fmt.Fprintf(sb, "Units left: %.0f\n", e.UnitsLeft)
	}
	sb.WriteString("\n")
}

// writeSummary writes link and confidence counts.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, s model.Summary) {
	fmt.Fprintf(sb, "\nLinks:      %d wikidata, %d other, %d none\n", s.Wikidata, s.Fallback, s.Unlinked)
	fmt.Fprintf(sb, "Confidence: %d high, %d medium, %d low (mean %.3f)\n", s.High, s.Medium, s.Low, s.MeanConfidence)
}

// renderTable draws the result rows with a normal border.
func renderTable(e *model.Extraction) string {
	rows := make([][]string, len(e.Rows))
	for i, r := range e.Rows {
		rows[i] = rowCells(r)
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tableHeader...).
		Rows(rows...).
		String()
}
