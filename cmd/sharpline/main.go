package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	appName = "sharpline"
	version = "v1.3.0"
)

var (
	flagSportsConfig string
	flagParlayConfig string
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Classification and parlay construction engine for simulated-model betting signals",
		Version: version,
		Long: `sharpline evaluates simulated-model output against market lines to classify
betting opportunities (EDGE / LEAN / NO_PLAY) and assembles multi-leg parlays
from pools of classified legs under correlation and quality constraints.`,
	}

	rootCmd.PersistentFlags().StringVar(&flagSportsConfig, "sports-config", "", "Path to sports calibration YAML (built-in defaults if empty)")
	rootCmd.PersistentFlags().StringVar(&flagParlayConfig, "parlay-config", "", "Path to parlay profiles YAML (built-in defaults if empty)")

	// Accept underscore spellings for every flag (--sports_config etc.)
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.AddCommand(newEvaluateCmd())
	rootCmd.AddCommand(newParlayCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
