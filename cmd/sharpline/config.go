package main

import (
	parlaycfg "github.com/sharpline/sharpline/internal/config/parlay"
	"github.com/sharpline/sharpline/internal/config/sports"
)

// loadSportsRegistry loads calibration from --sports-config, falling back
// to built-in defaults. Invalid calibration is fatal before any evaluation.
func loadSportsRegistry() (*sports.Registry, error) {
	if flagSportsConfig == "" {
		return sports.NewRegistryWithDefaults(), nil
	}
	return sports.LoadRegistry(flagSportsConfig)
}

func loadParlayConfig() (*parlaycfg.Config, error) {
	if flagParlayConfig == "" {
		return parlaycfg.NewConfigWithDefaults(), nil
	}
	return parlaycfg.LoadConfig(flagParlayConfig)
}
