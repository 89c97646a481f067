package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharpline/sharpline/internal/domain"
	"github.com/sharpline/sharpline/internal/parlay"
)

func newParlayCmd() *cobra.Command {
	var (
		poolFile       string
		profileName    string
		legsRequested  int
		allowSameEvent bool
		allowSameTeam  bool
		includeProps   bool
		seed           int64
	)

	cmd := &cobra.Command{
		Use:   "parlay",
		Short: "Build a parlay from a classified leg pool file",
		Long:  "Reads a JSON array of classified legs, runs the fallback ladder, and prints the parlay result (PARLAY or FAIL with diagnostics).",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadSportsRegistry()
			if err != nil {
				return err
			}
			profiles, err := loadParlayConfig()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(poolFile)
			if err != nil {
				return fmt.Errorf("failed to read pool %s: %w", poolFile, err)
			}

			var pool []domain.Leg
			if err := json.Unmarshal(data, &pool); err != nil {
				return fmt.Errorf("failed to parse leg pool: %w", err)
			}

			builder := parlay.NewBuilder(profiles, registry)
			result, err := builder.Build(pool, parlay.Request{
				Profile:        profileName,
				LegsRequested:  legsRequested,
				AllowSameEvent: allowSameEvent,
				AllowSameTeam:  allowSameTeam,
				IncludeProps:   includeProps,
				Seed:           seed,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&poolFile, "pool", "", "Path to JSON leg pool (required)")
	cmd.Flags().StringVar(&profileName, "profile", "standard", "Parlay profile name")
	cmd.Flags().IntVar(&legsRequested, "legs", 4, "Number of legs requested (3-6)")
	cmd.Flags().BoolVar(&allowSameEvent, "allow-same-event", false, "Allow multiple legs from one event")
	cmd.Flags().BoolVar(&allowSameTeam, "allow-same-team", false, "Allow multiple legs on one team")
	cmd.Flags().BoolVar(&includeProps, "include-props", false, "Include player prop legs")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Tie-break seed for deterministic selection")
	cmd.MarkFlagRequired("pool")

	return cmd
}
