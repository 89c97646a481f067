package classify

import (
	"fmt"
	"math"

	"github.com/sharpline/sharpline/internal/config/sports"
	"github.com/sharpline/sharpline/internal/domain"
)

// Key numbers carry disproportionate real-world frequency in football
// spreads; retaining EDGE on one requires extra margin.
var footballKeyNumbers = []float64{3, 7, 10, 14}

const (
	keyNumberTolerance   = 0.25
	keyNumberExtraMargin = 1.5
)

// Input is a fully validated Layer B evaluation request. Malformed input
// (unknown market type, negative edge metric) is rejected at the boundary
// before this package is invoked.
type Input struct {
	Sport          string
	MarketType     domain.MarketType
	EdgeMetric     float64
	CompressedProb float64
	Confidence     float64
	MarketLine     float64
	Selection      domain.Selection
	Overrides      []domain.OverrideSignal
}

// Classifier is the Layer B edge classifier. Stateless beyond the injected
// read-only registry; safe to share across goroutines.
type Classifier struct {
	registry *sports.Registry
}

// NewClassifier creates a classifier bound to a sport calibration registry
func NewClassifier(registry *sports.Registry) *Classifier {
	return &Classifier{registry: registry}
}

// Classify turns an edge metric + compressed probability + confidence into a
// sport-calibrated classification. For well-formed input it always returns a
// fully populated ClassificationResult; the error path covers only sports or
// markets absent from the registry.
func (c *Classifier) Classify(in Input) (domain.ClassificationResult, error) {
	th, err := c.registry.Thresholds(in.Sport, in.MarketType)
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	profile, err := c.registry.Profile(in.Sport)
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	if in.EdgeMetric < 0 {
		return domain.ClassificationResult{}, fmt.Errorf("negative edge metric %.3f", in.EdgeMetric)
	}

	reasons := []domain.ReasonCode{}
	candidate := domain.ClassificationNoPlay

	// Step 1-3: threshold ladder with confidence gate on EDGE
	switch {
	case in.EdgeMetric >= th.EdgeThreshold && in.Confidence >= c.registry.MinConfidence():
		candidate = domain.ClassificationEdge
		reasons = append(reasons, domain.EdgeThresholdMetReason(in.MarketType))
	case in.EdgeMetric >= th.LeanThreshold:
		candidate = domain.ClassificationLean
		if in.EdgeMetric >= th.EdgeThreshold {
			// Edge was there but confidence was not
			reasons = append(reasons, domain.EdgeThresholdMetReason(in.MarketType), domain.ReasonConfidenceBelowMinimum)
		} else {
			reasons = append(reasons, domain.ReasonEdgeThresholdNotMet, domain.ReasonLeanThresholdMet)
		}
	default:
		reasons = append(reasons, domain.ReasonEdgeThresholdNotMet, domain.ReasonLeanThresholdNotMet)
	}

	// Step 4: hard cap clamps the candidate to at most LEAN
	if th.HardCap != nil {
		if math.Abs(in.CompressedProb-0.5) > *th.HardCap {
			if candidate == domain.ClassificationEdge {
				candidate = domain.ClassificationLean
			}
			reasons = append(reasons, domain.ReasonHardCapExceeded)
		} else {
			reasons = append(reasons, domain.ReasonHardCapOK)
		}
	}

	// Step 5: key-number protection, football spreads only
	keyNumberAdjusted := false
	if profile.KeyNumberProtection && in.MarketType == domain.MarketSpread {
		if nearKeyNumber(in.MarketLine) && candidate == domain.ClassificationEdge &&
			in.EdgeMetric < th.EdgeThreshold+keyNumberExtraMargin {
			candidate = domain.ClassificationLean
			keyNumberAdjusted = true
			reasons = append(reasons, domain.ReasonKeyNumberDowngrade)
		} else {
			reasons = append(reasons, domain.ReasonKeyNumberChecked)
		}
	}

	// Step 6: situational overrides, downgrade-only
	final, overrideApplied, overrideReasons := applyOverrides(candidate, in.Sport, in.Overrides)
	reasons = append(reasons, overrideReasons...)

	return domain.ClassificationResult{
		Sport:             in.Sport,
		MarketType:        in.MarketType,
		Classification:    final,
		EdgeMetric:        in.EdgeMetric,
		Confidence:        in.Confidence,
		CompressedProb:    in.CompressedProb,
		Selection:         in.Selection,
		ReasonCodes:       reasons,
		OverrideApplied:   overrideApplied,
		KeyNumberAdjusted: keyNumberAdjusted,
	}, nil
}

func nearKeyNumber(line float64) bool {
	abs := math.Abs(line)
	for _, key := range footballKeyNumbers {
		if math.Abs(abs-key) <= keyNumberTolerance {
			return true
		}
	}
	return false
}
