package views

import (
	"math"

	"flowmon/internal/models"
)

// Band is an anomaly severity class
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Cut points between bands. Low is [0, MediumCut), medium [MediumCut,
// HighCut), high [HighCut, 1].
const (
	MediumCut = 0.5
	HighCut   = 0.75
)

// Classify places score in exactly one band. Scores outside [0,1] are
// clamped first and NaN counts as low.
func Classify(score float64) Band {
	if math.IsNaN(score) {
		return BandLow
	}
	score = math.Max(0, math.Min(1, score))
	switch {
	case score >= HighCut:
		return BandHigh
	case score >= MediumCut:
		return BandMedium
	default:
		return BandLow
	}
}

// AnomalyIndex is the mean confidence over flows, 0 for none
func AnomalyIndex(flows []models.FlowRecord) float64 {
	if len(flows) == 0 {
		return 0
	}
	var sum float64
	for _, f := range flows {
		sum += f.Confidence
	}
	return sum / float64(len(flows))
}
