package domain

// ReasonCode is the closed vocabulary external logging and UI layers key off.
// Adding a code here carries the same weight as changing a wire protocol.
type ReasonCode string

const (
	// Eligibility (Layer A)
	ReasonEligibilityFailed ReasonCode = "ELIGIBILITY_FAILED"

	// Threshold evaluation (Layer B)
	ReasonEdgeSpreadThresholdMet    ReasonCode = "EDGE_SPREAD_THRESHOLD_MET"
	ReasonEdgeTotalThresholdMet     ReasonCode = "EDGE_TOTAL_THRESHOLD_MET"
	ReasonEdgeMoneylineThresholdMet ReasonCode = "EDGE_MONEYLINE_THRESHOLD_MET"
	ReasonEdgeThresholdNotMet       ReasonCode = "EDGE_THRESHOLD_NOT_MET"
	ReasonLeanThresholdMet          ReasonCode = "LEAN_THRESHOLD_MET"
	ReasonLeanThresholdNotMet       ReasonCode = "LEAN_THRESHOLD_NOT_MET"
	ReasonConfidenceBelowMinimum    ReasonCode = "CONFIDENCE_BELOW_MINIMUM"

	// Hard cap
	ReasonHardCapOK       ReasonCode = "HARD_CAP_OK"
	ReasonHardCapExceeded ReasonCode = "HARD_CAP_EXCEEDED"

	// Key-number protection (football spreads)
	ReasonKeyNumberChecked   ReasonCode = "KEY_NUMBER_CHECKED"
	ReasonKeyNumberDowngrade ReasonCode = "KEY_NUMBER_DOWNGRADE"

	// Overrides
	ReasonNoOverridesActive     ReasonCode = "NO_OVERRIDES_ACTIVE"
	ReasonOverridePitcher       ReasonCode = "OVERRIDE_PITCHER"
	ReasonOverrideQB            ReasonCode = "OVERRIDE_QB"
	ReasonOverrideGoalie        ReasonCode = "OVERRIDE_GOALIE"
	ReasonOverrideLineup        ReasonCode = "OVERRIDE_LINEUP"
	ReasonOverrideWeather       ReasonCode = "OVERRIDE_WEATHER"
	ReasonOverrideVolatility    ReasonCode = "OVERRIDE_VOLATILITY"
	ReasonOverrideNotApplicable ReasonCode = "OVERRIDE_NOT_APPLICABLE"

	// Parlay construction
	ReasonNoValidParlayFound ReasonCode = "NO_VALID_PARLAY_FOUND"
	ReasonInsufficientPool   ReasonCode = "INSUFFICIENT_POOL"
	ReasonInvalidProfile     ReasonCode = "INVALID_PROFILE"
)

// EdgeThresholdMetReason maps a market type to its EDGE threshold reason code
func EdgeThresholdMetReason(mt MarketType) ReasonCode {
	switch mt {
	case MarketSpread:
		return ReasonEdgeSpreadThresholdMet
	case MarketTotal:
		return ReasonEdgeTotalThresholdMet
	default:
		return ReasonEdgeMoneylineThresholdMet
	}
}

// OverrideReason maps an override kind to its downgrade reason code
func OverrideReason(t OverrideType) ReasonCode {
	switch t {
	case OverridePitcher:
		return ReasonOverridePitcher
	case OverrideQB:
		return ReasonOverrideQB
	case OverrideGoalie:
		return ReasonOverrideGoalie
	case OverrideLineup:
		return ReasonOverrideLineup
	case OverrideWeather:
		return ReasonOverrideWeather
	default:
		return ReasonOverrideVolatility
	}
}
