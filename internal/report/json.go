package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/entityscan/internal/annotation"
	"github.com/nao1215/entityscan/internal/model"
)

// JSONWriter outputs extractions as JSON for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string.
	indentString string

	// rowsOnly writes the bare row array instead of the full document.
	rowsOnly bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
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

// WithRowsOnly writes only the array of display rows.
func WithRowsOnly() JSONWriterOption {
	return func(w *JSONWriter) {
		w.rowsOnly = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Document is the JSON shape of a full report.
type Document struct {
	// Version is the entityscan version that produced the document.
	Version string `json:"version,omitempty"`

	// Message is "Found N entities:" or the no-entities message.
	Message string `json:"message"`

	// Extraction holds the rows and request metadata.
	Extraction *model.Extraction `json:"extraction"`

	// Summary aggregates the rows.
	Summary model.Summary `json:"summary"`
}

// NewDocument wraps e with its summary and message.
func NewDocument(e *model.Extraction, version string) *Document {
	msg := NoEntitiesMessage
	if !e.IsEmpty() {
		msg = FoundMessage(len(e.Rows))
	}
	return &Document{
		Version:    version,
		Message:    msg,
		Extraction: e,
		Summary:    e.Summary(),
	}
}

// Write renders e as JSON.
func (w *JSONWriter) Write(e *model.Extraction) (int, error) {
	if w.rowsOnly {
		rows := e.Rows
		if rows == nil {
			rows = []annotation.Row{}
		}
		return w.writeJSON(rows)
	}
	return w.writeJSON(NewDocument(e, ""))
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

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

// VersionedJSONWriter writes full documents stamped with a version.
type VersionedJSONWriter struct {
	*JSONWriter

	version string
}

// NewVersionedJSONWriter creates a JSON writer that records version in each document.
func NewVersionedJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *VersionedJSONWriter {
	return &VersionedJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write renders e wrapped with the version.
func (w *VersionedJSONWriter) Write(e *model.Extraction) (int, error) {
	return w.writeJSON(NewDocument(e, w.version))
}
