package parlay

import (
	"github.com/sharpline/sharpline/internal/config/sports"
	"github.com/sharpline/sharpline/internal/domain"
)

// DeriveTier maps a classification + confidence + sport into a parlay tier.
// Pure and total:
//   - EDGE is Tier EDGE unconditionally.
//   - LEAN is promoted to PICK when confidence clears the sport's bar.
//   - NO_PLAY is expected to be filtered before any pool reaches this
//     function; if one sneaks through it degrades to Tier LEAN.
func DeriveTier(classification domain.Classification, confidence float64, sport string, registry *sports.Registry) domain.Tier {
	switch classification {
	case domain.ClassificationEdge:
		return domain.TierEdge
	case domain.ClassificationLean:
		if confidence >= registry.PickConfidence(sport) {
			return domain.TierPick
		}
		return domain.TierLean
	default:
		return domain.TierLean
	}
}
