package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/entityscan/internal/annotation"
	"github.com/nao1215/entityscan/internal/dandelion"
)

func decodeResponse(t *testing.T, body string) *dandelion.Response {
	t.Helper()
	var resp dandelion.Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	return &resp
}

func TestNewExtraction(t *testing.T) {
	t.Parallel()

	resp := decodeResponse(t, `{
		"lang": "en",
		"timestamp": "2024-01-01T10:00:00.000",
		"annotations": [
			{"label": "Rome", "confidence": 0.91234, "types": ["City", "Place"], "lod": {"wikidata": "Q220"}},
			{"spot": "Tiber", "confidence": 0.7, "uri": "http://en.wikipedia.org/wiki/Tiber"},
			{"title": "Italy"}
		]
	}`)
	resp.UnitsLeft = 42

	e := NewExtraction(Source{Kind: SourceText}, "Rome is on the Tiber in Italy", resp, 120*time.Millisecond)

	if e.Lang != "en" {
		t.Errorf("Lang = %q, want en", e.Lang)
	}
	if e.Timestamp != "2024-01-01T10:00:00.000" {
		t.Errorf("Timestamp = %q", e.Timestamp)
	}
	if e.UnitsLeft != 42 {
		t.Errorf("UnitsLeft = %v, want 42", e.UnitsLeft)
	}
	if e.Elapsed != 120*time.Millisecond {
		t.Errorf("Elapsed = %v", e.Elapsed)
	}
	if e.DateExtracted.IsZero() {
		t.Error("DateExtracted should be set")
	}
	if len(e.TextDigest) != 64 {
		t.Errorf("len(TextDigest) = %d, want 64", len(e.TextDigest))
	}

	want := []annotation.Row{
		{Entity: "Rome", Type: "City, Place", Confidence: 0.912, Link: "https://www.wikidata.org/wiki/Q220"},
		{Entity: "Tiber", Type: "-", Confidence: 0.7, Link: "http://en.wikipedia.org/wiki/Tiber"},
		{Entity: "Italy", Type: "-", Confidence: 0},
	}
	if len(e.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d, want %d", len(e.Rows), len(want))
	}
	for i := range want {
		if e.Rows[i] != want[i] {
			t.Errorf("Rows[%d] = %+v, want %+v", i, e.Rows[i], want[i])
		}
	}
}

func TestNewExtractionNilResponse(t *testing.T) {
	t.Parallel()

	e := NewExtraction(Source{Kind: SourceStdin}, "", nil, 0)
	if !e.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
	if e.Rows == nil {
		t.Error("Rows should be an empty slice, not nil")
	}
	if e.TextDigest != "" {
		t.Errorf("TextDigest = %q, want empty", e.TextDigest)
	}
	if e.UnitsLeft != -1 {
		t.Errorf("UnitsLeft = %v, want -1", e.UnitsLeft)
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()

	a := Digest("Rome")
	if a != Digest("  Rome\n") {
		t.Error("Digest should ignore surrounding whitespace")
	}
	if a == Digest("Milan") {
		t.Error("different texts should have different digests")
	}
	if strings.ToLower(a) != a {
		t.Error("Digest should be lowercase hex")
	}
}

func TestSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  Source
		want string
	}{
		{Source{Kind: SourceText}, "text"},
		{Source{Kind: SourceFile, Name: "notes.txt"}, "file:notes.txt"},
		{Source{Kind: SourceURL, Name: "https://example.com"}, "url:https://example.com"},
	}
	for _, tt := range tests {
		if got := tt.src.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
