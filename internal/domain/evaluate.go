package domain

import "math"

// Evaluate converts a hazard count into a safety score in [0, 100] and a risk
// label, using the variant's per-hazard penalty.
func Evaluate(hazardCount int, v Variant) (int, Risk) {
	if hazardCount < 0 {
		hazardCount = 0
	}
	raw := math.Max(0, float64(100-v.Penalty()*hazardCount))
	score := int(math.Round(raw))
	return score, RiskFor(score)
}

// RiskFor maps a safety score onto a risk label.
func RiskFor(score int) Risk {
	switch {
	case score > 70:
		return RiskLow
	case score > 40:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// MeterBand returns the color band of the safety meter for a score.
func MeterBand(score int) string {
	switch {
	case score >= 70:
		return "green"
	case score >= 40:
		return "amber"
	default:
		return "red"
	}
}
