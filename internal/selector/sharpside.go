package selector

import (
	"fmt"

	"github.com/sharpline/sharpline/internal/domain"
)

// referenceConfidenceBar is the fixed confidence above which the
// designated reference model wins even against model disagreement.
const referenceConfidenceBar = 0.75

// ModelView is one contributing model's opinion on an event side
type ModelView struct {
	Model      string  `json:"model"`
	Side       string  `json:"side"`
	Line       float64 `json:"line"`
	Confidence float64 `json:"confidence"`
	Reference  bool    `json:"reference"` // Designated reference model (RCL)
}

// Input carries the model views plus the game context the historical
// bias rules are gated on.
type Input struct {
	Sport      string            `json:"sport"`
	MarketType domain.MarketType `json:"market_type"`
	Views      []ModelView       `json:"views"`
	HomeSide   string            `json:"home_side"`
	AwaySide   string            `json:"away_side"`
	HomeSpread float64           `json:"home_spread"` // Market spread from the home side (positive = home underdog)
}

// SelectSide resolves which side a classification attaches to via the
// priority hierarchy: consensus, reference override, historical bias,
// efficient market. First match wins. Runs independently of the edge
// classifier; its output populates ClassificationResult.Selection.
func SelectSide(in Input) (domain.Selection, error) {
	if len(in.Views) == 0 {
		return domain.Selection{}, fmt.Errorf("no model views supplied")
	}

	// 1. CONSENSUS: every contributing model agrees on direction
	if side, ok := consensusSide(in.Views); ok {
		return domain.Selection{Side: side, Line: lineForSide(in.Views, side), Method: domain.MethodConsensus}, nil
	}

	// 2. RCL_OVERRIDE: reference model clears the fixed confidence bar
	for _, view := range in.Views {
		if view.Reference && view.Confidence >= referenceConfidenceBar {
			return domain.Selection{Side: view.Side, Line: view.Line, Method: domain.MethodRCLOverride}, nil
		}
	}

	// 3. HISTORICAL_BIAS: sport-specific directional rule, each gated by
	// its own precondition on the game context
	if side, ok := historicalBias(in); ok {
		return domain.Selection{Side: side, Line: lineForSide(in.Views, side), Method: domain.MethodHistoricalBias}, nil
	}

	// 4. EFFICIENT_MARKET: no side preference beyond the strongest raw lean
	best := in.Views[0]
	for _, view := range in.Views[1:] {
		if view.Confidence > best.Confidence {
			best = view
		}
	}
	return domain.Selection{Side: best.Side, Line: best.Line, Method: domain.MethodEfficientMarket}, nil
}

func consensusSide(views []ModelView) (string, bool) {
	side := views[0].Side
	for _, view := range views[1:] {
		if view.Side != side {
			return "", false
		}
	}
	return side, true
}

// historicalBias applies per-sport directional rules on spread markets:
// NFL home underdogs getting a field goal or more, NBA road favorites
// laying a modest number. Both are gated on spread size so the rule
// never fires on extreme lines.
func historicalBias(in Input) (string, bool) {
	if in.MarketType != domain.MarketSpread {
		return "", false
	}

	switch in.Sport {
	case "NFL":
		if in.HomeSpread >= 3.0 && in.HomeSide != "" {
			return in.HomeSide, true
		}
	case "NBA":
		if in.HomeSpread > 0 && in.HomeSpread <= 5.5 && in.AwaySide != "" {
			return in.AwaySide, true
		}
	}
	return "", false
}

func lineForSide(views []ModelView, side string) float64 {
	for _, view := range views {
		if view.Side == side {
			return view.Line
		}
	}
	return 0
}
