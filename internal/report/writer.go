package report

import (
	"fmt"
	"io"

	"github.com/nao1215/entityscan/internal/annotation"
	"github.com/nao1215/entityscan/internal/model"
)

// User-facing result messages.
const (
	// NoEntitiesMessage is shown when the API found nothing.
	NoEntitiesMessage = "No entities found in the supplied text."

	// foundFormat introduces the result table.
	foundFormat = "Found %d entities:"
)

// FoundMessage returns "Found N entities:".
func FoundMessage(n int) string {
	return fmt.Sprintf(foundFormat, n)
}

// Column headers of the result table.
var tableHeader = []string{"Entity", "Type", "Confidence", "Wikidata / URI"}

// Writer renders extractions.
type Writer interface {
	// Write renders e to the configured destination and returns the number
	// of bytes written.
	Write(e *model.Extraction) (int, error)
}

// MultiWriter writes to multiple Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders e with every writer in order and stops on the first error.
func (m *MultiWriter) Write(e *model.Extraction) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(e)
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

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatConfidence prints a rounded confidence with three decimals.
func formatConfidence(c float64) string {
	return fmt.Sprintf("%.3f", c)
}

// emptyCell is printed for a missing entity or link.
const emptyCell = "-"

// rowCells returns the table cells of r.
func rowCells(r annotation.Row) []string {
	entity := r.Entity
	if entity == "" {
		entity = emptyCell
	}
	link := r.Link
	if link == "" {
		link = emptyCell
	}
	return []string{entity, r.Type, formatConfidence(r.Confidence), link}
}
