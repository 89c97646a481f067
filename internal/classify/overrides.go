package classify

import (
	"github.com/sharpline/sharpline/internal/domain"
)

// overrideSports maps each override kind to the sports it applies to.
// A nil entry means the override applies to every sport.
var overrideSports = map[domain.OverrideType][]string{
	domain.OverridePitcher:    {"MLB"},
	domain.OverrideQB:         {"NFL", "NCAAF"},
	domain.OverrideGoalie:     {"NHL"},
	domain.OverrideLineup:     nil,
	domain.OverrideWeather:    nil,
	domain.OverrideVolatility: nil,
}

func overrideApplies(t domain.OverrideType, sport string) bool {
	allowed, ok := overrideSports[t]
	if !ok {
		return false
	}
	if allowed == nil {
		return true
	}
	for _, s := range allowed {
		if s == sport {
			return true
		}
	}
	return false
}

// applyOverrides evaluates active override signals against a candidate
// classification. Overrides only ever downgrade EDGE to LEAN; they never
// upgrade. Every evaluated signal leaves a reason code for audit.
func applyOverrides(candidate domain.Classification, sport string, signals []domain.OverrideSignal) (domain.Classification, bool, []domain.ReasonCode) {
	reasons := []domain.ReasonCode{}
	downgraded := false

	for _, signal := range signals {
		if !signal.Active {
			continue
		}
		if !overrideApplies(signal.Type, sport) {
			reasons = append(reasons, domain.ReasonOverrideNotApplicable)
			continue
		}
		reasons = append(reasons, domain.OverrideReason(signal.Type))
		if candidate == domain.ClassificationEdge {
			candidate = domain.ClassificationLean
			downgraded = true
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, domain.ReasonNoOverridesActive)
	}

	return candidate, downgraded, reasons
}
