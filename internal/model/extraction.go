package model

import (
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/entityscan/internal/annotation"
	"github.com/nao1215/entityscan/internal/dandelion"
)

// Source describes where the analyzed text came from.
type Source struct {
	// Kind is one of SourceText, SourceFile, SourceStdin, SourceURL or SourceWeb.
	Kind string `json:"kind"`

	// Name is the file path or URL. Empty for inline text.
	Name string `json:"name,omitempty"`
}

// Source kinds.
const (
	SourceText  = "text"
	SourceFile  = "file"
	SourceStdin = "stdin"
	SourceURL   = "url"
	SourceWeb   = "web"
)

// String returns "kind" or "kind:name".
func (s Source) String() string {
	if s.Name == "" {
		return s.Kind
	}
	return s.Kind + ":" + s.Name
}

// Extraction is the normalized result of one extraction request.
type Extraction struct {
	// ID is the history row id. Zero until the extraction is saved.
	ID int64 `json:"id,omitempty"`

	// Source is where the text came from.
	Source Source `json:"source"`

	// TextDigest is the hex SHA3-256 of the analyzed text.
	// The text itself is not retained.
	TextDigest string `json:"text_digest,omitempty"`

	// Lang is the language the API analyzed the text in.
	Lang string `json:"lang,omitempty"`

	// Rows are the display rows, one per annotation, in API order.
	Rows []annotation.Row `json:"rows"`

	// Timestamp is the server time reported by the API.
	Timestamp string `json:"timestamp,omitempty"`

	// DateExtracted is when the response was received.
	DateExtracted time.Time `json:"date_extracted"`

	// Elapsed is the round-trip time of the request.
	Elapsed time.Duration `json:"elapsed_ns"`

	// UnitsLeft is the remaining API quota, or -1 when unknown.
	UnitsLeft float64 `json:"units_left"`
}

// NewExtraction normalizes resp into an Extraction.
// text is the text that was sent and is only used for the digest.
func NewExtraction(source Source, text string, resp *dandelion.Response, elapsed time.Duration) *Extraction {
	e := &Extraction{
		Source:        source,
		DateExtracted: time.Now(),
		Elapsed:       elapsed,
		UnitsLeft:     -1,
		Rows:          []annotation.Row{},
	}
	if text != "" {
		e.TextDigest = Digest(text)
	}
	if resp == nil {
		return e
	}

	e.Lang = resp.Lang
	e.Timestamp = resp.Timestamp
	e.UnitsLeft = resp.UnitsLeft
	e.Rows = annotation.NormalizeAll(resp.Annotations)
	return e
}

// Digest returns the hex SHA3-256 of text after trimming surrounding space.
func Digest(text string) string {
	sum := sha3.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// IsEmpty reports whether no entities were found.
func (e *Extraction) IsEmpty() bool {
	return len(e.Rows) == 0
}
