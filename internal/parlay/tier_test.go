package parlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sharpline/sharpline/internal/config/sports"
	"github.com/sharpline/sharpline/internal/domain"
)

func TestDeriveTier_EdgeAlwaysEdge(t *testing.T) {
	registry := sports.NewRegistryWithDefaults()

	for _, confidence := range []float64{0.0, 0.5, 0.65, 1.0} {
		tier := DeriveTier(domain.ClassificationEdge, confidence, "NBA", registry)
		assert.Equal(t, domain.TierEdge, tier, "confidence %.2f", confidence)
	}
}

func TestDeriveTier_LeanPromotedByConfidence(t *testing.T) {
	registry := sports.NewRegistryWithDefaults()

	tests := []struct {
		name       string
		sport      string
		confidence float64
		want       domain.Tier
	}{
		{"nba at default pick bar", "NBA", 0.70, domain.TierPick},
		{"nba below default pick bar", "NBA", 0.69, domain.TierLean},
		{"nfl custom pick bar met", "NFL", 0.72, domain.TierPick},
		{"nfl between default and custom bar", "NFL", 0.71, domain.TierLean},
		{"mlb at pick bar", "MLB", 0.70, domain.TierPick},
		{"unlisted sport falls back to default bar", "WNBA", 0.70, domain.TierPick},
		{"unlisted sport below default bar", "WNBA", 0.69, domain.TierLean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTier(domain.ClassificationLean, tt.confidence, tt.sport, registry)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveTier_NoPlayFallsBackToLean(t *testing.T) {
	registry := sports.NewRegistryWithDefaults()

	tier := DeriveTier(domain.ClassificationNoPlay, 0.99, "NBA", registry)
	assert.Equal(t, domain.TierLean, tier)
}

func TestLegWeight(t *testing.T) {
	assert.InDelta(t, 2.7, legWeight(domain.TierEdge, 0.9), 1e-9)
	assert.InDelta(t, 1.4, legWeight(domain.TierPick, 0.7), 1e-9)
	assert.InDelta(t, 0.65, legWeight(domain.TierLean, 0.65), 1e-9)
}

func TestTierRankOrdering(t *testing.T) {
	assert.Less(t, domain.TierEdge.Rank(), domain.TierPick.Rank())
	assert.Less(t, domain.TierPick.Rank(), domain.TierLean.Rank())
}
