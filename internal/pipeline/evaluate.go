package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sharpline/sharpline/internal/classify"
	"github.com/sharpline/sharpline/internal/config/sports"
	"github.com/sharpline/sharpline/internal/domain"
	"github.com/sharpline/sharpline/internal/eligibility"
	"github.com/sharpline/sharpline/internal/metrics"
	"github.com/sharpline/sharpline/internal/selector"
)

// EvaluationInput is one game/market evaluation request, assembled by the
// caller from the simulation, odds and override feeds.
type EvaluationInput struct {
	Sport      string                    `json:"sport"`
	Simulation domain.SimulationSnapshot `json:"simulation"`
	Market     domain.MarketSnapshot     `json:"market"`
	Overrides  []domain.OverrideSignal   `json:"overrides"`
	Views      []selector.ModelView      `json:"views"`
	HomeSide   string                    `json:"home_side"`
	AwaySide   string                    `json:"away_side"`
	Confidence float64                   `json:"confidence"`
}

// Evaluator composes the eligibility gate, compressor, sharp-side selector
// and edge classifier into one evaluation call. Stateless between calls.
type Evaluator struct {
	registry   *sports.Registry
	gate       *eligibility.Gate
	classifier *classify.Classifier
	metrics    *metrics.Registry
	now        func() time.Time
}

// NewEvaluator wires the evaluation pipeline. metrics may be nil.
func NewEvaluator(registry *sports.Registry, gate *eligibility.Gate, m *metrics.Registry) *Evaluator {
	return &Evaluator{
		registry:   registry,
		gate:       gate,
		classifier: classify.NewClassifier(registry),
		metrics:    m,
		now:        time.Now,
	}
}

// WithClock overrides the clock used for the game-start admission check
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Evaluate runs Layer A then Layer B and always returns a fully populated
// ClassificationResult for admissible input. An eligibility failure
// short-circuits to NO_PLAY with reason ELIGIBILITY_FAILED; Layer B never
// runs on a failing verdict.
func (e *Evaluator) Evaluate(in EvaluationInput) (domain.ClassificationResult, error) {
	factor, err := e.registry.CompressionFactor(in.Sport)
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	verdict := e.gate.Check(in.Simulation, in.Market, e.now())
	if !verdict.Passed {
		e.recordEligibilityFailure(verdict)
		result := domain.ClassificationResult{
			Sport:          in.Sport,
			MarketType:     in.Market.MarketType,
			Classification: domain.ClassificationNoPlay,
			Confidence:     in.Confidence,
			ReasonCodes:    []domain.ReasonCode{domain.ReasonEligibilityFailed},
		}
		e.recordClassification(result)
		log.Debug().
			Str("sport", in.Sport).
			Strs("failures", verdict.FailureReasons).
			Msg("evaluation blocked at eligibility gate")
		return result, nil
	}

	compressed := classify.Compress(factor, in.Simulation.RawWinProbability)

	sel, err := selector.SelectSide(selector.Input{
		Sport:      in.Sport,
		MarketType: in.Market.MarketType,
		Views:      in.Views,
		HomeSide:   in.HomeSide,
		AwaySide:   in.AwaySide,
		HomeSpread: in.Market.MarketLine,
	})
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("sharp side selection failed: %w", err)
	}

	result, err := e.classifier.Classify(classify.Input{
		Sport:          in.Sport,
		MarketType:     in.Market.MarketType,
		EdgeMetric:     edgeMetric(in.Market, in.Simulation.ModelLine, compressed),
		CompressedProb: compressed,
		Confidence:     in.Confidence,
		MarketLine:     in.Market.MarketLine,
		Selection:      sel,
		Overrides:      in.Overrides,
	})
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	e.recordClassification(result)
	log.Info().
		Str("sport", result.Sport).
		Str("market", string(result.MarketType)).
		Str("classification", string(result.Classification)).
		Float64("edge", result.EdgeMetric).
		Str("side", result.Selection.Side).
		Bool("override_applied", result.OverrideApplied).
		Msg("evaluation complete")
	return result, nil
}

// edgeMetric measures model/market disagreement: points for spread and
// total markets, probability for moneyline.
func edgeMetric(market domain.MarketSnapshot, modelLine, compressedProb float64) float64 {
	if market.MarketType == domain.MarketMoneyline {
		return math.Abs(compressedProb - impliedProbability(market.MarketOdds))
	}
	return math.Abs(modelLine - market.MarketLine)
}

// impliedProbability converts American odds to a win probability (vig included)
func impliedProbability(odds float64) float64 {
	if odds > 0 {
		return 100.0 / (odds + 100.0)
	}
	return -odds / (-odds + 100.0)
}

func (e *Evaluator) recordClassification(result domain.ClassificationResult) {
	if e.metrics == nil {
		return
	}
	e.metrics.Classifications.WithLabelValues(result.Sport, string(result.MarketType), string(result.Classification)).Inc()
	if result.OverrideApplied {
		e.metrics.OverrideDowngrades.WithLabelValues(result.Sport).Inc()
	}
}

func (e *Evaluator) recordEligibilityFailure(verdict eligibility.Verdict) {
	if e.metrics == nil {
		return
	}
	for _, check := range verdict.Checks {
		if !check.Passed {
			e.metrics.EligibilityFailures.WithLabelValues(check.Name).Inc()
		}
	}
}
