package parlay

import "github.com/sharpline/sharpline/internal/domain"

// Tier base weights. The only contract on parlay weight is monotonicity:
// EDGE > PICK > LEAN, scaled by leg confidence. min_parlay_weight in the
// profiles is calibrated against this scale.
const (
	tierWeightEdge = 3.0
	tierWeightPick = 2.0
	tierWeightLean = 1.0
)

func legWeight(tier domain.Tier, confidence float64) float64 {
	switch tier {
	case domain.TierEdge:
		return tierWeightEdge * confidence
	case domain.TierPick:
		return tierWeightPick * confidence
	default:
		return tierWeightLean * confidence
	}
}
