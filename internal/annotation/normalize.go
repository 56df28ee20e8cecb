package annotation

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	// WikidataBaseURL is prepended to bare Wikidata identifiers such as "Q42".
	WikidataBaseURL = "https://www.wikidata.org/wiki/"

	// TypePlaceholder is shown when an annotation carries no usable types.
	TypePlaceholder = "-"

	// typeSeparator joins multiple type labels.
	typeSeparator = ", "

	// confidenceDigits is the number of decimals kept in Row.Confidence.
	confidenceDigits = 3
)

// Row is the display-ready form of one Annotation.
type Row struct {
	// Entity is the resolved display name. Empty when the annotation has no
	// label, title or spot.
	Entity string `json:"Entity"`

	// Type is the comma-separated list of type labels, or TypePlaceholder.
	Type string `json:"Type"`

	// Confidence is rounded to three decimals and lies in [0, 1].
	Confidence float64 `json:"Confidence"`

	// Link is a Wikidata URL or the annotation's fallback URI. Empty when
	// neither is available.
	Link string `json:"Wikidata / URI,omitempty"`
}

// HasLink reports whether the row carries a Wikidata URL or fallback URI.
func (r Row) HasLink() bool {
	return r.Link != ""
}

// accessor reads one candidate value out of an annotation.
type accessor func(Annotation) string

// labelChain lists the display-name sources in priority order.
var labelChain = []accessor{
	func(a Annotation) string { return a.Label },
	func(a Annotation) string { return a.Title },
	func(a Annotation) string { return a.Spot },
}

// linkChain lists the link sources in priority order. The URI fallback is
// used verbatim.
var linkChain = []accessor{
	func(a Annotation) string { return WikidataURL(WikidataValue(a.LOD)) },
	func(a Annotation) string { return a.URI },
}

// firstNonEmpty returns the first non-empty value produced by chain.
func firstNonEmpty(a Annotation, chain []accessor) string {
	for _, get := range chain {
		if v := get(a); v != "" {
			return v
		}
	}
	return ""
}

// Normalize converts one annotation into one display row.
func Normalize(a Annotation) Row {
	return Row{
		Entity:     ResolveLabel(a),
		Type:       ResolveType(a.Types),
		Confidence: RoundConfidence(a.Confidence),
		Link:       ResolveLink(a),
	}
}

// NormalizeAll converts annotations into rows. The result has exactly one row
// per annotation, in input order.
func NormalizeAll(annotations []Annotation) []Row {
	rows := make([]Row, len(annotations))
	for i, a := range annotations {
		rows[i] = Normalize(a)
	}
	return rows
}

// ResolveLabel returns the first non-empty of label, title and spot.
func ResolveLabel(a Annotation) string {
	return firstNonEmpty(a, labelChain)
}

// ResolveType renders the types field: a sequence is joined with ", " in its
// original order (non-string elements are skipped), a string is returned
// verbatim and anything else yields TypePlaceholder.
func ResolveType(types Value) string {
	switch types.Kind() {
	case KindString:
		s, _ := types.Str()
		return s
	case KindSequence:
		labels := make([]string, 0, types.Len())
		for _, item := range types.Items() {
			if s, ok := item.Str(); ok {
				labels = append(labels, s)
			}
		}
		if len(labels) == 0 {
			return TypePlaceholder
		}
		return strings.Join(labels, typeSeparator)
	default:
		return TypePlaceholder
	}
}

// RoundConfidence clamps c to [0, 1] and rounds it to three decimals.
// Rounding is performed on the exact binary value of c, so ties that are
// exactly representable round half to even (0.0625 -> 0.062) and values such
// as 0.0005 round the way their binary expansion dictates. NaN yields 0.
func RoundConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	c = math.Min(math.Max(c, 0), 1)
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(c, 'f', confidenceDigits, 64), 64)
	if err != nil {
		return 0
	}
	return rounded
}

// ResolveLink returns the normalized Wikidata link of a, falling back to its
// URI. It returns "" when neither is available.
func ResolveLink(a Annotation) string {
	return firstNonEmpty(a, linkChain)
}

// WikidataValue extracts the raw "wikidata" reference from a lod field.
// A mapping yields its "wikidata" string; a sequence yields the first mapping
// element whose "wikidata" string is non-blank. Any other shape yields "".
func WikidataValue(lod Value) string {
	switch lod.Kind() {
	case KindMapping:
		s, _ := lod.Get("wikidata").Str()
		return s
	case KindSequence:
		for _, item := range lod.Items() {
			if item.Kind() != KindMapping {
				continue
			}
			if s, ok := item.Get("wikidata").Str(); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// WikidataURL normalizes a Wikidata reference.
//
// A value starting with "http" is treated as a URL: the scheme is forced to
// https and only host and path are kept. Any other value is treated as a bare
// identifier and appended to WikidataBaseURL as an escaped path segment.
// It returns "" for blank values and for URLs without a host.
func WikidataURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if !hasHTTPPrefix(ref) {
		return WikidataBaseURL + url.PathEscape(ref)
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return ""
	}
	secure := url.URL{
		Scheme:  "https",
		Host:    u.Host,
		Path:    u.Path,
		RawPath: u.RawPath,
	}
	return secure.String()
}

// hasHTTPPrefix reports whether s starts with "http", ignoring case.
func hasHTTPPrefix(s string) bool {
	const prefix = "http"
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
