package eligibility

import (
	"fmt"
	"time"

	"github.com/sharpline/sharpline/internal/domain"
)

// Config contains hard admission thresholds for Layer A
type Config struct {
	MinSimulations int     `yaml:"min_simulations"` // >=10,000 simulated outcomes
	MaxVolatility  float64 `yaml:"max_volatility"`  // Upper bound on model variance measure
	MinVolatility  float64 `yaml:"min_volatility"`  // Lower bound (degenerate distributions)
}

// DefaultConfig returns production admission thresholds
func DefaultConfig() *Config {
	return &Config{
		MinSimulations: 10000,
		MaxVolatility:  3.5,
		MinVolatility:  0.0,
	}
}

// Check represents the result of a single admission check
type Check struct {
	Name        string      `json:"name"`
	Passed      bool        `json:"passed"`
	Value       interface{} `json:"value"`
	Threshold   interface{} `json:"threshold"`
	Description string      `json:"description"`
}

// Verdict is the pass/fail admission result. Ephemeral: recomputed fresh
// on every call from the latest snapshot, never cached.
type Verdict struct {
	Passed         bool     `json:"passed"`
	Checks         []Check  `json:"checks"`
	FailureReasons []string `json:"failure_reasons"`
}

// Gate performs the Layer A eligibility check on simulation+market snapshots
type Gate struct {
	config *Config
}

// NewGate creates a gate; nil config uses production defaults
func NewGate(config *Config) *Gate {
	if config == nil {
		config = DefaultConfig()
	}
	return &Gate{config: config}
}

// Check evaluates every admission rule against the snapshots. Any single
// failure is terminal: Layer B must not run on a failing verdict.
func (g *Gate) Check(sim domain.SimulationSnapshot, market domain.MarketSnapshot, now time.Time) Verdict {
	verdict := Verdict{
		Checks:         []Check{},
		FailureReasons: []string{},
	}

	simCheck := Check{
		Name:        "simulation_count",
		Passed:      sim.SimulationCount >= g.config.MinSimulations,
		Value:       sim.SimulationCount,
		Threshold:   g.config.MinSimulations,
		Description: fmt.Sprintf("Simulation count %d >= %d", sim.SimulationCount, g.config.MinSimulations),
	}
	verdict.record(simCheck, fmt.Sprintf("Simulation count %d below minimum %d", sim.SimulationCount, g.config.MinSimulations))

	marketCheck := Check{
		Name:        "market_fields",
		Passed:      marketFieldsPresent(market),
		Value:       string(market.MarketType),
		Threshold:   "type + odds (+ line for SPREAD/TOTAL)",
		Description: "Required market fields present",
	}
	verdict.record(marketCheck, "Required market fields absent")

	startCheck := Check{
		Name:        "game_start",
		Passed:      sim.GameStart.After(now),
		Value:       sim.GameStart.Format(time.RFC3339),
		Threshold:   now.Format(time.RFC3339),
		Description: "Game start time in the future",
	}
	verdict.record(startCheck, "Game start time has passed")

	volCheck := Check{
		Name:        "volatility",
		Passed:      sim.Volatility >= g.config.MinVolatility && sim.Volatility <= g.config.MaxVolatility,
		Value:       sim.Volatility,
		Threshold:   fmt.Sprintf("[%.2f, %.2f]", g.config.MinVolatility, g.config.MaxVolatility),
		Description: fmt.Sprintf("Volatility %.2f within [%.2f, %.2f]", sim.Volatility, g.config.MinVolatility, g.config.MaxVolatility),
	}
	verdict.record(volCheck, fmt.Sprintf("Volatility %.2f outside bounds [%.2f, %.2f]", sim.Volatility, g.config.MinVolatility, g.config.MaxVolatility))

	stableCheck := Check{
		Name:        "distribution_stability",
		Passed:      sim.DistributionStable,
		Value:       sim.DistributionStable,
		Threshold:   true,
		Description: "Simulation distribution stable",
	}
	verdict.record(stableCheck, "Simulation distribution unstable")

	verdict.Passed = len(verdict.FailureReasons) == 0
	return verdict
}

func (v *Verdict) record(check Check, failure string) {
	v.Checks = append(v.Checks, check)
	if !check.Passed {
		v.FailureReasons = append(v.FailureReasons, failure)
	}
}

func marketFieldsPresent(market domain.MarketSnapshot) bool {
	if _, err := domain.ParseMarketType(string(market.MarketType)); err != nil {
		return false
	}
	if market.MarketOdds == 0 {
		return false
	}
	// Totals are never zero; a zero spread is a valid pick'em and a
	// moneyline carries no line at all
	if market.MarketType == domain.MarketTotal && market.MarketLine == 0 {
		return false
	}
	return true
}
