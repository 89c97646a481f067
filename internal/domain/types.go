package domain

import (
	"fmt"
	"time"
)

// MarketType identifies the bet market a snapshot or leg belongs to
type MarketType string

const (
	MarketSpread    MarketType = "SPREAD"
	MarketTotal     MarketType = "TOTAL"
	MarketMoneyline MarketType = "MONEYLINE"
)

// ParseMarketType validates a wire-level market type string
func ParseMarketType(s string) (MarketType, error) {
	switch MarketType(s) {
	case MarketSpread, MarketTotal, MarketMoneyline:
		return MarketType(s), nil
	default:
		return "", fmt.Errorf("unknown market type: %q", s)
	}
}

// Classification is the two-layer evaluator's terminal verdict
type Classification string

const (
	ClassificationEdge   Classification = "EDGE"
	ClassificationLean   Classification = "LEAN"
	ClassificationNoPlay Classification = "NO_PLAY"
)

// Tier is the parlay-eligibility bucket derived from a classification
type Tier string

const (
	TierEdge Tier = "EDGE"
	TierPick Tier = "PICK"
	TierLean Tier = "LEAN"
)

// Rank orders tiers for deterministic selection (lower is better)
func (t Tier) Rank() int {
	switch t {
	case TierEdge:
		return 0
	case TierPick:
		return 1
	default:
		return 2
	}
}

// OverrideType is the closed set of situational override kinds
type OverrideType string

const (
	OverridePitcher    OverrideType = "PITCHER"
	OverrideQB         OverrideType = "QB"
	OverrideGoalie     OverrideType = "GOALIE"
	OverrideLineup     OverrideType = "LINEUP"
	OverrideWeather    OverrideType = "WEATHER"
	OverrideVolatility OverrideType = "VOLATILITY"
)

// ParseOverrideType rejects unknown override kinds at the boundary
func ParseOverrideType(s string) (OverrideType, error) {
	switch OverrideType(s) {
	case OverridePitcher, OverrideQB, OverrideGoalie, OverrideLineup, OverrideWeather, OverrideVolatility:
		return OverrideType(s), nil
	default:
		return "", fmt.Errorf("unknown override type: %q", s)
	}
}

// OverrideSignal is one situational signal supplied by an external feed
type OverrideSignal struct {
	Type   OverrideType `json:"type"`
	Active bool         `json:"active"`
	Detail string       `json:"detail,omitempty"`
}

// SimulationSnapshot is the read-only output of the Monte Carlo engine
type SimulationSnapshot struct {
	SimulationCount    int       `json:"simulation_count"`
	RawWinProbability  float64   `json:"raw_win_probability"`
	ModelLine          float64   `json:"model_line"`
	Volatility         float64   `json:"volatility"`
	DistributionStable bool      `json:"distribution_stable"`
	GameStart          time.Time `json:"game_start"`
}

// MarketSnapshot is the read-only market state from odds ingestion
type MarketSnapshot struct {
	MarketLine float64    `json:"market_line"`
	MarketOdds float64    `json:"market_odds"` // American odds
	MarketType MarketType `json:"market_type"`
}

// SelectionMethod records which rung of the sharp-side hierarchy fired
type SelectionMethod string

const (
	MethodConsensus       SelectionMethod = "CONSENSUS"
	MethodRCLOverride     SelectionMethod = "RCL_OVERRIDE"
	MethodHistoricalBias  SelectionMethod = "HISTORICAL_BIAS"
	MethodEfficientMarket SelectionMethod = "EFFICIENT_MARKET"
)

// Selection is the side a classification attaches to
type Selection struct {
	Side   string          `json:"side"`
	Line   float64         `json:"line"`
	Method SelectionMethod `json:"method"`
}

// ClassificationResult is created once per evaluation and never mutated.
// Downstream consumers (signal locking, presentation) may freeze a subset
// of its fields but must not write back into this record.
type ClassificationResult struct {
	Sport             string         `json:"sport"`
	MarketType        MarketType     `json:"market_type"`
	Classification    Classification `json:"classification"`
	EdgeMetric        float64        `json:"edge_metric"`
	Confidence        float64        `json:"confidence"`
	CompressedProb    float64        `json:"compressed_prob"`
	Selection         Selection      `json:"selection"`
	ReasonCodes       []ReasonCode   `json:"reason_codes"`
	OverrideApplied   bool           `json:"override_applied"`
	KeyNumberAdjusted bool           `json:"key_number_adjusted"`
}

// Leg is one classified opportunity in a parlay pool
type Leg struct {
	ID             string         `json:"id"`
	EventID        string         `json:"event_id"`
	MarketKey      string         `json:"market_key"`
	Selection      string         `json:"selection"`
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	Sport          string         `json:"sport"`
	TeamKey        string         `json:"team_key,omitempty"`
	DIPass         bool           `json:"di_pass"`
	MVPass         bool           `json:"mv_pass"`
	VolatilityFlag bool           `json:"volatility_flag"`
	IsProp         bool           `json:"is_prop,omitempty"`
}
