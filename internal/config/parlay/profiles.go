package parlay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile defines the nominal construction rules for one parlay product
type Profile struct {
	Name                  string  `yaml:"name"`
	MinParlayWeight       float64 `yaml:"min_parlay_weight"`        // Aggregate tier-weighted score floor
	SoftMinEdgeCount      int     `yaml:"soft_min_edge_count"`      // Soft minimum EDGE-tier legs
	SoftMinPickCount      int     `yaml:"soft_min_pick_count"`      // Soft minimum PICK-or-better legs
	AllowLean             bool    `yaml:"allow_lean"`               // LEAN-tier legs admitted at step 0
	MaxHighVolatilityLegs int     `yaml:"max_high_volatility_legs"` // Cap on volatility-flagged legs
}

// LadderConfig calibrates the fallback ladder's weight relaxations
type LadderConfig struct {
	WeightDecrement1 float64 `yaml:"weight_decrement_1"` // Step 1 min_parlay_weight reduction
	WeightDecrement2 float64 `yaml:"weight_decrement_2"` // Step 5 reduction (larger, from nominal)
}

// Config holds all parlay profiles plus ladder calibration
type Config struct {
	Profiles map[string]Profile `yaml:"profiles"`
	Ladder   LadderConfig       `yaml:"ladder"`
}

// LoadConfig reads parlay profiles from a YAML file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read parlay config %s: %w", configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse parlay config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("parlay config validation failed: %w", err)
	}

	return &config, nil
}

// NewConfigWithDefaults returns built-in parlay profiles (testing/fallback)
func NewConfigWithDefaults() *Config {
	config := &Config{
		Profiles: map[string]Profile{
			"standard": {
				Name:                  "standard",
				MinParlayWeight:       7.5,
				SoftMinEdgeCount:      1,
				SoftMinPickCount:      2,
				AllowLean:             true,
				MaxHighVolatilityLegs: 1,
			},
			"premium": {
				Name:                  "premium",
				MinParlayWeight:       9.0,
				SoftMinEdgeCount:      2,
				SoftMinPickCount:      3,
				AllowLean:             false,
				MaxHighVolatilityLegs: 0,
			},
			"longshot": {
				Name:                  "longshot",
				MinParlayWeight:       6.0,
				SoftMinEdgeCount:      0,
				SoftMinPickCount:      1,
				AllowLean:             true,
				MaxHighVolatilityLegs: 2,
			},
		},
		Ladder: LadderConfig{
			WeightDecrement1: 0.5,
			WeightDecrement2: 1.0,
		},
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("default parlay config invalid: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no parlay profiles configured")
	}
	for name, p := range c.Profiles {
		if p.MinParlayWeight <= 0 {
			return fmt.Errorf("profile %s: min_parlay_weight %.2f must be > 0", name, p.MinParlayWeight)
		}
		if p.SoftMinEdgeCount < 0 || p.SoftMinPickCount < 0 {
			return fmt.Errorf("profile %s: soft tier minimums must be >= 0", name)
		}
		if p.MaxHighVolatilityLegs < 0 {
			return fmt.Errorf("profile %s: max_high_volatility_legs must be >= 0", name)
		}
	}
	if c.Ladder.WeightDecrement1 <= 0 || c.Ladder.WeightDecrement2 <= c.Ladder.WeightDecrement1 {
		return fmt.Errorf("ladder decrements must satisfy 0 < decrement_1 < decrement_2")
	}
	return nil
}

// Profile looks up a parlay profile by name
func (c *Config) Profile(name string) (Profile, bool) {
	p, ok := c.Profiles[name]
	return p, ok
}
