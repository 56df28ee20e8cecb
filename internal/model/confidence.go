package model

// ConfidenceBand groups confidence scores for display and summaries.
type ConfidenceBand int

const (
	// BandLow covers scores below 0.6, the API's default threshold.
	// Such rows only appear when a lower min_confidence was requested.
	BandLow ConfidenceBand = iota

	// BandMedium covers scores in [0.6, 0.8).
	BandMedium

	// BandHigh covers scores of 0.8 and above.
	BandHigh
)

// Band thresholds.
const (
	mediumThreshold = 0.6
	highThreshold   = 0.8
)

// String returns a human-readable representation of the band.
func (b ConfidenceBand) String() string {
	switch b {
	case BandLow:
		return "LOW"
	case BandMedium:
		return "MEDIUM"
	case BandHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// BandOf returns the band a rounded confidence score falls in.
func BandOf(confidence float64) ConfidenceBand {
	switch {
	case confidence >= highThreshold:
		return BandHigh
	case confidence >= mediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}
