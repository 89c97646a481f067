package parlay

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parlaycfg "github.com/sharpline/sharpline/internal/config/parlay"
	"github.com/sharpline/sharpline/internal/config/sports"
	"github.com/sharpline/sharpline/internal/domain"
)

func newTestBuilder() *Builder {
	return NewBuilder(parlaycfg.NewConfigWithDefaults(), sports.NewRegistryWithDefaults())
}

func poolLeg(id string, classification domain.Classification, confidence float64) domain.Leg {
	return domain.Leg{
		ID:             id,
		EventID:        "ev-" + id,
		MarketKey:      "SPREAD",
		Classification: classification,
		Confidence:     confidence,
		Sport:          "NBA",
		TeamKey:        "team-" + id,
		DIPass:         true,
		MVPass:         true,
	}
}

func TestBuild_StepZeroSuccess(t *testing.T) {
	b := newTestBuilder()
	pool := []domain.Leg{
		poolLeg("a", domain.ClassificationEdge, 0.9),
		poolLeg("b", domain.ClassificationEdge, 0.9),
		poolLeg("c", domain.ClassificationEdge, 0.9),
	}

	res, err := b.Build(pool, Request{Profile: "standard", LegsRequested: 3, Seed: 1})
	require.NoError(t, err)

	require.Equal(t, StatusParlay, res.Status)
	assert.Equal(t, 0, res.FallbackStepUsed)
	assert.Len(t, res.Legs, 3)
	assert.InDelta(t, 8.1, res.ParlayWeight, 1e-9)
}

func TestBuild_WeightDecrementStep(t *testing.T) {
	b := newTestBuilder()
	// 3 edges at 0.8 weigh 7.2: under the standard 7.5 floor, over 7.0
	pool := []domain.Leg{
		poolLeg("a", domain.ClassificationEdge, 0.8),
		poolLeg("b", domain.ClassificationEdge, 0.8),
		poolLeg("c", domain.ClassificationEdge, 0.8),
	}

	res, err := b.Build(pool, Request{Profile: "standard", LegsRequested: 3, Seed: 1})
	require.NoError(t, err)

	require.Equal(t, StatusParlay, res.Status)
	assert.Equal(t, 1, res.FallbackStepUsed)
	assert.InDelta(t, 7.2, res.ParlayWeight, 1e-9)
}

func TestBuild_VolatilityRelaxationStep(t *testing.T) {
	b := newTestBuilder()
	volA := poolLeg("a", domain.ClassificationEdge, 0.9)
	volA.VolatilityFlag = true
	volB := poolLeg("b", domain.ClassificationEdge, 0.9)
	volB.VolatilityFlag = true
	pool := []domain.Leg{volA, volB, poolLeg("c", domain.ClassificationEdge, 0.9)}

	// Standard caps at 1 volatile leg; only the cap bump at step 2 fits both
	res, err := b.Build(pool, Request{Profile: "standard", LegsRequested: 3, Seed: 1})
	require.NoError(t, err)

	require.Equal(t, StatusParlay, res.Status)
	assert.Equal(t, 2, res.FallbackStepUsed)
	assert.InDelta(t, 8.1, res.ParlayWeight, 1e-9)
}

func TestBuild_TierMinimumRelaxationStep(t *testing.T) {
	b := newTestBuilder()
	pool := []domain.Leg{
		poolLeg("a", domain.ClassificationEdge, 1.0),
		poolLeg("b", domain.ClassificationLean, 1.0), // promoted to PICK
		poolLeg("c", domain.ClassificationLean, 1.0),
		poolLeg("d", domain.ClassificationLean, 1.0),
	}

	// One EDGE against premium's minimum of two: only the tier-minimum
	// relaxation at step 3 admits this pool
	res, err := b.Build(pool, Request{Profile: "premium", LegsRequested: 4, Seed: 5})
	require.NoError(t, err)

	require.Equal(t, StatusParlay, res.Status)
	assert.Equal(t, 3, res.FallbackStepUsed)
	assert.InDelta(t, 9.0, res.ParlayWeight, 1e-9)

	tiers := map[domain.Tier]int{}
	for _, leg := range res.Legs {
		tiers[leg.Tier]++
	}
	assert.Equal(t, 1, tiers[domain.TierEdge])
	assert.Equal(t, 3, tiers[domain.TierPick])
}

func TestBuild_ForceLeanStep(t *testing.T) {
	b := newTestBuilder()
	pool := []domain.Leg{
		poolLeg("a", domain.ClassificationEdge, 1.0),
		poolLeg("b", domain.ClassificationEdge, 1.0),
		poolLeg("c", domain.ClassificationLean, 1.0),  // promoted to PICK
		poolLeg("d", domain.ClassificationLean, 0.69), // stays LEAN
	}

	// Premium forbids leans outright, so four legs only exist at step 4
	res, err := b.Build(pool, Request{Profile: "premium", LegsRequested: 4, Seed: 7})
	require.NoError(t, err)

	require.Equal(t, StatusParlay, res.Status)
	assert.Equal(t, 4, res.FallbackStepUsed)
	assert.InDelta(t, 8.69, res.ParlayWeight, 1e-9)

	tiers := map[domain.Tier]int{}
	for _, leg := range res.Legs {
		tiers[leg.Tier]++
	}
	assert.Equal(t, 2, tiers[domain.TierEdge])
	assert.Equal(t, 1, tiers[domain.TierPick])
	assert.Equal(t, 1, tiers[domain.TierLean])
}

func TestBuild_FinalWeightDecrementStep(t *testing.T) {
	b := newTestBuilder()
	// 3 edges at 0.75 weigh 6.75: below every floor until the deep decrement
	pool := []domain.Leg{
		poolLeg("a", domain.ClassificationEdge, 0.75),
		poolLeg("b", domain.ClassificationEdge, 0.75),
		poolLeg("c", domain.ClassificationEdge, 0.75),
	}

	res, err := b.Build(pool, Request{Profile: "standard", LegsRequested: 3, Seed: 1})
	require.NoError(t, err)

	require.Equal(t, StatusParlay, res.Status)
	assert.Equal(t, 5, res.FallbackStepUsed)
	assert.InDelta(t, 6.75, res.ParlayWeight, 1e-9)
}

func TestBuild_InsufficientPool(t *testing.T) {
	b := newTestBuilder()
	diFail := poolLeg("a", domain.ClassificationEdge, 0.9)
	diFail.DIPass = false
	mvFail := poolLeg("b", domain.ClassificationEdge, 0.9)
	mvFail.MVPass = false
	pool := []domain.Leg{
		diFail,
		mvFail,
		poolLeg("c", domain.ClassificationEdge, 0.9),
		poolLeg("d", domain.ClassificationEdge, 0.9),
		poolLeg("e", domain.ClassificationEdge, 0.9),
	}

	res, err := b.Build(pool, Request{Profile: "premium", LegsRequested: 4, Seed: 1})
	require.NoError(t, err)

	require.Equal(t, StatusFail, res.Status)
	assert.Equal(t, domain.ReasonInsufficientPool, res.ReasonCode)
	require.NotNil(t, res.ReasonDetail)
	assert.Equal(t, 3, res.ReasonDetail.EligibleTotal)
	assert.Equal(t, 1, res.ReasonDetail.BlockedCounts["di_fail"])
	assert.Equal(t, 1, res.ReasonDetail.BlockedCounts["mv_fail"])
}

func TestBuild_SameTeamExhaustsLadder(t *testing.T) {
	b := newTestBuilder()
	pool := make([]domain.Leg, 0, 4)
	for i := 0; i < 4; i++ {
		leg := poolLeg(fmt.Sprintf("l%d", i), domain.ClassificationEdge, 0.9)
		leg.TeamKey = "NYY"
		pool = append(pool, leg)
	}

	res, err := b.Build(pool, Request{Profile: "standard", LegsRequested: 3, Seed: 1})
	require.NoError(t, err)

	require.Equal(t, StatusFail, res.Status)
	assert.Equal(t, domain.ReasonNoValidParlayFound, res.ReasonCode)
	require.NotNil(t, res.ReasonDetail)
	assert.Equal(t, 4, res.ReasonDetail.EligibleTotal)
	// One leg selected, three blocked; each reported once even though
	// every ladder step re-attempted them
	assert.Equal(t, 3, res.ReasonDetail.BlockedCounts["same_team"])
}

func TestBuild_SameEventBlockedUnlessAllowed(t *testing.T) {
	b := newTestBuilder()
	spread := poolLeg("a", domain.ClassificationEdge, 0.9)
	total := poolLeg("b", domain.ClassificationEdge, 0.9)
	total.EventID = spread.EventID
	total.MarketKey = "TOTAL"
	pool := []domain.Leg{spread, total, poolLeg("c", domain.ClassificationEdge, 0.9)}

	res, err := b.Build(pool, Request{Profile: "standard", LegsRequested: 3, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusFail, res.Status)

	res, err = b.Build(pool, Request{Profile: "standard", LegsRequested: 3, AllowSameEvent: true, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusParlay, res.Status)
}

func TestBuild_PropsExcludedByDefault(t *testing.T) {
	b := newTestBuilder()
	prop := poolLeg("a", domain.ClassificationEdge, 0.9)
	prop.IsProp = true
	pool := []domain.Leg{
		prop,
		poolLeg("b", domain.ClassificationEdge, 0.9),
		poolLeg("c", domain.ClassificationEdge, 0.9),
	}

	res, err := b.Build(pool, Request{Profile: "standard", LegsRequested: 3, Seed: 1})
	require.NoError(t, err)
	require.Equal(t, StatusFail, res.Status)
	assert.Equal(t, domain.ReasonInsufficientPool, res.ReasonCode)
	assert.Equal(t, 1, res.ReasonDetail.BlockedCounts["props_excluded"])

	res, err = b.Build(pool, Request{Profile: "standard", LegsRequested: 3, IncludeProps: true, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusParlay, res.Status)
}

func TestBuild_InvalidProfile(t *testing.T) {
	b := newTestBuilder()
	pool := []domain.Leg{
		poolLeg("a", domain.ClassificationEdge, 0.9),
		poolLeg("b", domain.ClassificationEdge, 0.9),
		poolLeg("c", domain.ClassificationEdge, 0.9),
	}

	res, err := b.Build(pool, Request{Profile: "yolo", LegsRequested: 3})
	require.NoError(t, err)

	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, domain.ReasonInvalidProfile, res.ReasonCode)
}

func TestBuild_LegsRequestedBounds(t *testing.T) {
	b := newTestBuilder()

	_, err := b.Build(nil, Request{Profile: "standard", LegsRequested: 2})
	assert.Error(t, err)

	_, err = b.Build(nil, Request{Profile: "standard", LegsRequested: 7})
	assert.Error(t, err)
}

func TestBuild_Deterministic(t *testing.T) {
	b := newTestBuilder()

	// All ties: same tier, same confidence. Only the seeded tie-break orders them.
	pool := make([]domain.Leg, 0, 8)
	for i := 0; i < 8; i++ {
		pool = append(pool, poolLeg(fmt.Sprintf("leg-%d", i), domain.ClassificationEdge, 0.85))
	}
	req := Request{Profile: "standard", LegsRequested: 4, Seed: 42}

	first, err := b.Build(pool, req)
	require.NoError(t, err)
	second, err := b.Build(pool, req)
	require.NoError(t, err)

	require.Equal(t, first, second)

	// Pool order must not matter either
	reversed := make([]domain.Leg, len(pool))
	for i, leg := range pool {
		reversed[len(pool)-1-i] = leg
	}
	third, err := b.Build(reversed, req)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestBuild_LongshotAcceptsLeans(t *testing.T) {
	b := newTestBuilder()
	pool := []domain.Leg{
		poolLeg("a", domain.ClassificationEdge, 0.9),
		poolLeg("b", domain.ClassificationLean, 0.75), // PICK at the NBA bar
		poolLeg("c", domain.ClassificationLean, 0.68),
		poolLeg("d", domain.ClassificationLean, 0.68),
	}

	// 2.7 + 1.5 + 0.68 + 0.68 = 5.56: under longshot's 6.0 floor, over 5.5 at step 1
	res, err := b.Build(pool, Request{Profile: "longshot", LegsRequested: 4, Seed: 3})
	require.NoError(t, err)

	require.Equal(t, StatusParlay, res.Status)
	assert.Equal(t, 1, res.FallbackStepUsed)
	assert.InDelta(t, 5.56, res.ParlayWeight, 1e-9)
}
