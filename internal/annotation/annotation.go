package annotation

import (
	"encoding/json"
	"math"
)

// Annotation is one entity match returned by the extraction service for a
// span of the input text. It is immutable once received.
type Annotation struct {
	// ID is the service's identifier of the matched entity, if reported.
	ID int64

	// Label is the preferred display name of the entity.
	Label string

	// Title is the title of the entity's knowledge-base page.
	Title string

	// Spot is the substring of the input text that was matched.
	Spot string

	// Start and End are the rune offsets of Spot in the input text.
	Start int
	End   int

	// Confidence is the service-reported relevance score. Zero when absent.
	Confidence float64

	// URI is a fallback linked-data URI, usually a DBpedia resource.
	URI string

	// Abstract is a short description of the entity, when requested.
	Abstract string

	// Categories lists the knowledge-base categories of the entity.
	Categories []string

	// LOD holds the linked-open-data cross references: a mapping, a sequence
	// of mappings or absent.
	LOD Value

	// Types holds the entity type labels: a sequence of strings, a single
	// string or absent.
	Types Value
}

// Parse builds an Annotation from a decoded JSON object. It never fails:
// fields with an unexpected shape are treated as absent.
func Parse(raw map[string]any) Annotation {
	return Annotation{
		ID:         int64(numberField(raw, "id")),
		Label:      stringField(raw, "label"),
		Title:      stringField(raw, "title"),
		Spot:       stringField(raw, "spot"),
		Start:      int(numberField(raw, "start")),
		End:        int(numberField(raw, "end")),
		Confidence: numberField(raw, "confidence"),
		URI:        stringField(raw, "uri"),
		Abstract:   stringField(raw, "abstract"),
		Categories: stringsField(raw, "categories"),
		LOD:        ValueOf(raw["lod"]),
		Types:      ValueOf(raw["types"]),
	}
}

// UnmarshalJSON decodes an annotation object leniently. A JSON value that is
// not an object decodes to an empty Annotation; only malformed JSON is an
// error.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		*a = Annotation{}
		return nil
	}
	*a = Parse(obj)
	return nil
}

// stringField returns raw[key] if it is a string, "" otherwise.
func stringField(raw map[string]any, key string) string {
	s, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return s
}

// numberField returns raw[key] as a float64, or 0 when it is missing, not a
// number, or not finite.
func numberField(raw map[string]any, key string) float64 {
	var f float64
	switch n := raw[key].(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// stringsField returns the string elements of raw[key] when it is an array.
func stringsField(raw map[string]any, key string) []string {
	items := ValueOf(raw[key]).Items()
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.Str(); ok {
			out = append(out, s)
		}
	}
	return out
}
