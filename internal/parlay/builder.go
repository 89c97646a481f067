package parlay

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	parlaycfg "github.com/sharpline/sharpline/internal/config/parlay"
	"github.com/sharpline/sharpline/internal/config/sports"
	"github.com/sharpline/sharpline/internal/domain"
)

// Bounds on legs per parlay; requests outside them are admission failures
const (
	MinLegsRequested = 3
	MaxLegsRequested = 6

	ladderSteps = 6
)

// Request describes one parlay construction attempt
type Request struct {
	Profile        string `json:"profile"`
	LegsRequested  int    `json:"legs_requested"`
	AllowSameEvent bool   `json:"allow_same_event"`
	AllowSameTeam  bool   `json:"allow_same_team"`
	IncludeProps   bool   `json:"include_props"`
	Seed           int64  `json:"seed"`
}

// Status is the parlay outcome discriminant
type Status string

const (
	StatusParlay Status = "PARLAY"
	StatusFail   Status = "FAIL"
)

// SelectedLeg annotates a pool leg with its derived tier and weight
type SelectedLeg struct {
	domain.Leg
	Tier   domain.Tier `json:"tier"`
	Weight float64     `json:"weight"`
}

// ReasonDetail carries failure diagnostics; always populated on FAIL.
// BlockedCounts holds the hard-gate exclusions (di_fail, mv_fail,
// props_excluded) plus the soft exclusions of the final ladder step only,
// so each excluded leg is reported once.
type ReasonDetail struct {
	EligibleTotal  int                 `json:"eligible_total"`
	EligibleByTier map[domain.Tier]int `json:"eligible_by_tier"`
	BlockedCounts  map[string]int      `json:"blocked_counts"`
}

// Result is always produced, success or failure, never a nil sentinel.
// Branch on Status: PARLAY carries Legs/ParlayWeight/FallbackStepUsed,
// FAIL carries ReasonCode/ReasonDetail.
type Result struct {
	Status           Status            `json:"status"`
	Legs             []SelectedLeg     `json:"legs_selected,omitempty"`
	ParlayWeight     float64           `json:"parlay_weight,omitempty"`
	FallbackStepUsed int               `json:"fallback_step_used"`
	ReasonCode       domain.ReasonCode `json:"reason_code,omitempty"`
	ReasonDetail     *ReasonDetail     `json:"reason_detail,omitempty"`
}

// Builder executes the bounded fallback ladder over a classified leg pool.
// Stateless: identical (pool, request) always yields bit-identical output.
type Builder struct {
	profiles *parlaycfg.Config
	registry *sports.Registry
}

// NewBuilder creates a builder bound to parlay profiles and sport calibration
func NewBuilder(profiles *parlaycfg.Config, registry *sports.Registry) *Builder {
	return &Builder{profiles: profiles, registry: registry}
}

type scoredLeg struct {
	leg  domain.Leg
	tier domain.Tier
}

type stepRules struct {
	minWeight float64
	minEdge   int
	minPick   int
	allowLean bool
	maxVol    int
}

// Build runs the 6-step fallback ladder and returns a structured result.
// The error path covers only malformed requests (legs_requested outside
// bounds); every domain failure is a first-class FAIL result.
func (b *Builder) Build(pool []domain.Leg, req Request) (Result, error) {
	if req.LegsRequested < MinLegsRequested || req.LegsRequested > MaxLegsRequested {
		return Result{}, fmt.Errorf("legs_requested %d outside [%d,%d]", req.LegsRequested, MinLegsRequested, MaxLegsRequested)
	}

	profile, ok := b.profiles.Profile(req.Profile)
	if !ok {
		return failResult(domain.ReasonInvalidProfile, &ReasonDetail{
			EligibleByTier: map[domain.Tier]int{},
			BlockedCounts:  map[string]int{},
		}), nil
	}

	// Hard gates: di_pass and mv_pass are never relaxed at any step
	blocked := map[string]int{}
	eligible := make([]domain.Leg, 0, len(pool))
	for _, leg := range pool {
		switch {
		case !leg.DIPass:
			blocked["di_fail"]++
		case !leg.MVPass:
			blocked["mv_fail"]++
		case leg.IsProp && !req.IncludeProps:
			blocked["props_excluded"]++
		default:
			eligible = append(eligible, leg)
		}
	}

	scored := make([]scoredLeg, 0, len(eligible))
	byTier := map[domain.Tier]int{}
	for _, leg := range eligible {
		tier := DeriveTier(leg.Classification, leg.Confidence, leg.Sport, b.registry)
		scored = append(scored, scoredLeg{leg: leg, tier: tier})
		byTier[tier]++
	}

	detail := &ReasonDetail{
		EligibleTotal:  len(eligible),
		EligibleByTier: byTier,
		BlockedCounts:  blocked,
	}

	if len(eligible) < req.LegsRequested {
		return failResult(domain.ReasonInsufficientPool, detail), nil
	}

	tieBreak := tieBreakKeys(scored, req.Seed)

	var lastSoft map[string]int
	for step := 0; step < ladderSteps; step++ {
		rules := b.rulesForStep(profile, step)
		soft := map[string]int{}
		legs, weight, ok := b.attempt(scored, req, rules, tieBreak, soft)
		if ok {
			return Result{
				Status:           StatusParlay,
				Legs:             legs,
				ParlayWeight:     weight,
				FallbackStepUsed: step,
			}, nil
		}
		lastSoft = soft
	}

	// Report the most relaxed step's soft exclusions, once per leg
	for key, count := range lastSoft {
		blocked[key] += count
	}
	return failResult(domain.ReasonNoValidParlayFound, detail), nil
}

// rulesForStep relaxes the profile's nominal rules cumulatively:
// each step keeps every earlier relaxation and adds its own.
func (b *Builder) rulesForStep(profile parlaycfg.Profile, step int) stepRules {
	rules := stepRules{
		minWeight: profile.MinParlayWeight,
		minEdge:   profile.SoftMinEdgeCount,
		minPick:   profile.SoftMinPickCount,
		allowLean: profile.AllowLean,
		maxVol:    profile.MaxHighVolatilityLegs,
	}
	if step >= 1 {
		rules.minWeight = profile.MinParlayWeight - b.profiles.Ladder.WeightDecrement1
	}
	if step >= 2 {
		rules.maxVol++
	}
	if step >= 3 {
		rules.minEdge = max(0, rules.minEdge-1)
		rules.minPick = max(0, rules.minPick-1)
	}
	if step >= 4 {
		rules.allowLean = true
	}
	if step >= 5 {
		rules.minWeight = profile.MinParlayWeight - b.profiles.Ladder.WeightDecrement2
	}
	return rules
}

// attempt filters to the step's allowed tiers, enforces correlation and
// volatility constraints during greedy selection, and checks the step's
// invariants. blocked receives this step's soft exclusions so an exhausted
// ladder can report why legs never made it in.
func (b *Builder) attempt(scored []scoredLeg, req Request, rules stepRules, tieBreak map[string]uint64, blocked map[string]int) ([]SelectedLeg, float64, bool) {
	candidates := make([]scoredLeg, 0, len(scored))
	for _, s := range scored {
		if s.tier == domain.TierLean && !rules.allowLean {
			blocked["lean_excluded"]++
			continue
		}
		candidates = append(candidates, s)
	}

	// Deterministic order: tier rank, quality, then a seeded tie-break.
	// Leg ID is the final comparator so the sort is a total order.
	sort.SliceStable(candidates, func(i, j int) bool {
		x, y := candidates[i], candidates[j]
		if x.tier.Rank() != y.tier.Rank() {
			return x.tier.Rank() < y.tier.Rank()
		}
		if x.leg.Confidence != y.leg.Confidence {
			return x.leg.Confidence > y.leg.Confidence
		}
		if tieBreak[x.leg.ID] != tieBreak[y.leg.ID] {
			return tieBreak[x.leg.ID] < tieBreak[y.leg.ID]
		}
		return x.leg.ID < y.leg.ID
	})

	seenEvents := map[string]bool{}
	seenTeams := map[string]bool{}
	selected := make([]SelectedLeg, 0, req.LegsRequested)
	volCount := 0
	weight := 0.0
	edgeCount := 0
	pickCount := 0

	for _, s := range candidates {
		if len(selected) == req.LegsRequested {
			break
		}
		if !req.AllowSameEvent && seenEvents[s.leg.EventID] {
			blocked["same_event"]++
			continue
		}
		if !req.AllowSameTeam && s.leg.TeamKey != "" && seenTeams[s.leg.TeamKey] {
			blocked["same_team"]++
			continue
		}
		if s.leg.VolatilityFlag && volCount == rules.maxVol {
			blocked["volatility_cap"]++
			continue
		}

		legW := legWeight(s.tier, s.leg.Confidence)
		selected = append(selected, SelectedLeg{Leg: s.leg, Tier: s.tier, Weight: legW})
		weight += legW
		seenEvents[s.leg.EventID] = true
		if s.leg.TeamKey != "" {
			seenTeams[s.leg.TeamKey] = true
		}
		if s.leg.VolatilityFlag {
			volCount++
		}
		switch s.tier {
		case domain.TierEdge:
			edgeCount++
			pickCount++
		case domain.TierPick:
			pickCount++
		}
	}

	if len(selected) < req.LegsRequested {
		return nil, 0, false
	}
	if edgeCount < rules.minEdge || pickCount < rules.minPick {
		return nil, 0, false
	}
	if weight < rules.minWeight {
		return nil, 0, false
	}

	return selected, weight, true
}

// tieBreakKeys derives a per-leg tie-break value from the request seed
// combined with a stable hash of the candidate set. Identical seed + pool
// always yield identical keys; wall-clock time never enters.
func tieBreakKeys(scored []scoredLeg, seed int64) map[string]uint64 {
	ids := make([]string, 0, len(scored))
	for _, s := range scored {
		ids = append(ids, s.leg.ID)
	}
	sort.Strings(ids)

	h := fnv.New64a()
	for _, id := range ids {
		h.Write([]byte(id))
	}

	rng := rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
	keys := make(map[string]uint64, len(ids))
	for _, id := range ids {
		keys[id] = rng.Uint64()
	}
	return keys
}

func failResult(code domain.ReasonCode, detail *ReasonDetail) Result {
	return Result{
		Status:       StatusFail,
		ReasonCode:   code,
		ReasonDetail: detail,
	}
}
