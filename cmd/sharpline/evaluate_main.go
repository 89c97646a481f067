package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharpline/sharpline/internal/eligibility"
	"github.com/sharpline/sharpline/internal/pipeline"
)

func newEvaluateCmd() *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Classify one game/market from a snapshot file",
		Long:  "Reads a JSON evaluation input (simulation + market snapshots, overrides, model views) and prints the classification result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadSportsRegistry()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read input %s: %w", inputFile, err)
			}

			var input pipeline.EvaluationInput
			if err := json.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("failed to parse evaluation input: %w", err)
			}

			evaluator := pipeline.NewEvaluator(registry, eligibility.NewGate(nil), nil)
			result, err := evaluator.Evaluate(input)
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

	cmd.Flags().StringVar(&inputFile, "input", "", "Path to JSON evaluation input (required)")
	cmd.MarkFlagRequired("input")

	return cmd
}
