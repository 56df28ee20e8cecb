package model

import (
	"strings"

	"github.com/nao1215/entityscan/internal/annotation"
)

// Summary aggregates the rows of an Extraction.
type Summary struct {
	// Total is the number of rows.
	Total int `json:"total"`

	// Wikidata counts rows linked to Wikidata.
	Wikidata int `json:"wikidata"`

	// Fallback counts rows linked to a non-Wikidata URI.
	Fallback int `json:"fallback"`

	// Unlinked counts rows without any link.
	Unlinked int `json:"unlinked"`

	// High, Medium and Low count rows per confidence band.
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`

	// MeanConfidence is the mean row confidence rounded to 3 decimals.
	// Zero when there are no rows.
	MeanConfidence float64 `json:"mean_confidence"`
}

// Summary computes counts over the rows of e.
func (e *Extraction) Summary() Summary {
	var s Summary
	var sum float64
	for _, r := range e.Rows {
		s.Total++
		sum += r.Confidence

		switch {
		case !r.HasLink():
			s.Unlinked++
		case IsWikidataLink(r.Link):
			s.Wikidata++
		default:
			s.Fallback++
		}

		switch BandOf(r.Confidence) {
		case BandHigh:
			s.High++
		case BandMedium:
			s.Medium++
		case BandLow:
			s.Low++
		}
	}
	if s.Total > 0 {
		s.MeanConfidence = annotation.RoundConfidence(sum / float64(s.Total))
	}
	return s
}

// IsWikidataLink reports whether link points at wikidata.org.
func IsWikidataLink(link string) bool {
	rest, ok := strings.CutPrefix(link, "https://")
	if !ok {
		return false
	}
	host, _, _ := strings.Cut(rest, "/")
	host = strings.ToLower(host)
	return host == "wikidata.org" || strings.HasSuffix(host, ".wikidata.org")
}
