package sports

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/sharpline/sharpline/internal/domain"
)

// MarketThresholds holds per-market classification thresholds for a sport
type MarketThresholds struct {
	EdgeThreshold float64  `yaml:"edge_threshold"` // Minimum edge for EDGE candidate
	LeanThreshold float64  `yaml:"lean_threshold"` // Minimum edge for LEAN candidate
	HardCap       *float64 `yaml:"hard_cap"`       // Max allowed |compressed_prob - 0.5|, optional
}

// SportProfile is the immutable per-sport calibration
type SportProfile struct {
	CompressionFactor   float64                     `yaml:"compression_factor"`    // (0,1], shrinkage toward 0.5
	PickConfidence      float64                     `yaml:"pick_confidence"`       // LEAN -> PICK tier promotion bar
	KeyNumberProtection bool                        `yaml:"key_number_protection"` // Football spreads only
	Markets             map[string]MarketThresholds `yaml:"markets"`
}

// RegistryConfig is the full calibration file
type RegistryConfig struct {
	MinConfidence         float64                 `yaml:"min_confidence"`          // Global EDGE confidence gate
	DefaultPickConfidence float64                 `yaml:"default_pick_confidence"` // Used when a sport omits pick_confidence
	Sports                map[string]SportProfile `yaml:"sports"`
}

// Registry is loaded once and read-only for the process lifetime.
// A config reload swaps in a new Registry instance between requests.
type Registry struct {
	config *RegistryConfig
}

// LoadRegistry reads and validates sport calibration from a YAML file.
// Validation failures are fatal: no evaluation may run against a bad registry.
func LoadRegistry(configPath string) (*Registry, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sports config %s: %w", configPath, err)
	}

	var config RegistryConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse sports config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("sports config validation failed: %w", err)
	}

	return &Registry{config: &config}, nil
}

// NewRegistryWithDefaults returns the built-in calibration (testing/fallback)
func NewRegistryWithDefaults() *Registry {
	cap22 := 0.22
	cap15 := 0.15

	config := &RegistryConfig{
		MinConfidence:         0.65,
		DefaultPickConfidence: 0.70,
		Sports: map[string]SportProfile{
			"NBA": {
				CompressionFactor: 0.70,
				PickConfidence:    0.70,
				Markets: map[string]MarketThresholds{
					"SPREAD":    {EdgeThreshold: 4.5, LeanThreshold: 2.5},
					"TOTAL":     {EdgeThreshold: 5.0, LeanThreshold: 3.0},
					"MONEYLINE": {EdgeThreshold: 0.060, LeanThreshold: 0.035, HardCap: &cap22},
				},
			},
			"NFL": {
				CompressionFactor:   0.65,
				PickConfidence:      0.72,
				KeyNumberProtection: true,
				Markets: map[string]MarketThresholds{
					"SPREAD":    {EdgeThreshold: 4.5, LeanThreshold: 2.5},
					"TOTAL":     {EdgeThreshold: 4.0, LeanThreshold: 2.0},
					"MONEYLINE": {EdgeThreshold: 0.055, LeanThreshold: 0.030, HardCap: &cap22},
				},
			},
			"NCAAF": {
				CompressionFactor:   0.75,
				PickConfidence:      0.68,
				KeyNumberProtection: true,
				Markets: map[string]MarketThresholds{
					"SPREAD": {EdgeThreshold: 5.5, LeanThreshold: 3.0},
					"TOTAL":  {EdgeThreshold: 5.0, LeanThreshold: 2.5},
				},
			},
			"MLB": {
				CompressionFactor: 0.60,
				PickConfidence:    0.70,
				Markets: map[string]MarketThresholds{
					"MONEYLINE": {EdgeThreshold: 0.050, LeanThreshold: 0.030, HardCap: &cap15},
					"TOTAL":     {EdgeThreshold: 1.0, LeanThreshold: 0.5},
				},
			},
			"NHL": {
				CompressionFactor: 0.60,
				PickConfidence:    0.70,
				Markets: map[string]MarketThresholds{
					"SPREAD":    {EdgeThreshold: 0.40, LeanThreshold: 0.20},
					"MONEYLINE": {EdgeThreshold: 0.050, LeanThreshold: 0.030, HardCap: &cap15},
					"TOTAL":     {EdgeThreshold: 0.45, LeanThreshold: 0.25},
				},
			},
		},
	}

	// Built-in defaults must themselves satisfy the config invariants
	if err := validateConfig(config); err != nil {
		panic(fmt.Sprintf("default sports config invalid: %v", err))
	}

	return &Registry{config: config}
}

// validateConfig enforces the load-time calibration invariants
func validateConfig(config *RegistryConfig) error {
	if config.MinConfidence <= 0 || config.MinConfidence > 1 {
		return fmt.Errorf("min_confidence %.3f outside (0,1]", config.MinConfidence)
	}
	if config.DefaultPickConfidence <= 0 || config.DefaultPickConfidence > 1 {
		return fmt.Errorf("default_pick_confidence %.3f outside (0,1]", config.DefaultPickConfidence)
	}
	if len(config.Sports) == 0 {
		return fmt.Errorf("no sports configured")
	}

	for sport, profile := range config.Sports {
		if profile.CompressionFactor <= 0 || profile.CompressionFactor > 1 {
			return fmt.Errorf("sport %s: compression_factor %.3f outside (0,1]", sport, profile.CompressionFactor)
		}
		if profile.PickConfidence < 0 || profile.PickConfidence > 1 {
			return fmt.Errorf("sport %s: pick_confidence %.3f outside [0,1]", sport, profile.PickConfidence)
		}
		if len(profile.Markets) == 0 {
			return fmt.Errorf("sport %s: no markets configured", sport)
		}
		for market, th := range profile.Markets {
			if _, err := domain.ParseMarketType(market); err != nil {
				return fmt.Errorf("sport %s: %w", sport, err)
			}
			if th.LeanThreshold <= 0 {
				return fmt.Errorf("sport %s market %s: lean_threshold %.3f must be > 0", sport, market, th.LeanThreshold)
			}
			if th.EdgeThreshold <= th.LeanThreshold {
				return fmt.Errorf("sport %s market %s: edge_threshold %.3f must exceed lean_threshold %.3f",
					sport, market, th.EdgeThreshold, th.LeanThreshold)
			}
			if th.HardCap != nil && (*th.HardCap <= 0 || *th.HardCap >= 0.5) {
				return fmt.Errorf("sport %s market %s: hard_cap %.3f outside (0,0.5)", sport, market, *th.HardCap)
			}
		}
	}

	return nil
}

// Profile returns the calibration for a sport
func (r *Registry) Profile(sport string) (SportProfile, error) {
	profile, ok := r.config.Sports[sport]
	if !ok {
		return SportProfile{}, fmt.Errorf("sport %s not configured", sport)
	}
	return profile, nil
}

// Thresholds returns the classification thresholds for a sport+market
func (r *Registry) Thresholds(sport string, market domain.MarketType) (MarketThresholds, error) {
	profile, err := r.Profile(sport)
	if err != nil {
		return MarketThresholds{}, err
	}
	th, ok := profile.Markets[string(market)]
	if !ok {
		return MarketThresholds{}, fmt.Errorf("sport %s: market %s not configured", sport, market)
	}
	return th, nil
}

// CompressionFactor returns the sport's probability shrinkage factor
func (r *Registry) CompressionFactor(sport string) (float64, error) {
	profile, err := r.Profile(sport)
	if err != nil {
		return 0, err
	}
	return profile.CompressionFactor, nil
}

// MinConfidence returns the global EDGE confidence gate
func (r *Registry) MinConfidence() float64 {
	return r.config.MinConfidence
}

// PickConfidence returns the LEAN->PICK promotion bar for a sport,
// falling back to the default for unlisted sports
func (r *Registry) PickConfidence(sport string) float64 {
	profile, ok := r.config.Sports[sport]
	if !ok || profile.PickConfidence == 0 {
		return r.config.DefaultPickConfidence
	}
	return profile.PickConfidence
}

// Sports returns the configured sport keys
func (r *Registry) Sports() []string {
	keys := make([]string, 0, len(r.config.Sports))
	for sport := range r.config.Sports {
		keys = append(keys, sport)
	}
	return keys
}
