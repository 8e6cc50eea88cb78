package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mismatch-predictor/internal/services/batch"
)

var batchOutput string

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Evaluate every row of a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		rows, rowErrors, err := batch.Parse(path, data)
		if err != nil {
			return err
		}

		evaluator, err := newEvaluator(cmd.Context())
		if err != nil {
			return err
		}

		result := batch.NewRunner(evaluator).Run(cmd.Context(), rows, rowErrors)

		name := batchOutput
		if name == "" {
			name = "results.csv"
		}
		encoded, err := result.Encode(name)
		if err != nil {
			return err
		}

		if batchOutput == "" {
			if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
				return err
			}
		} else if err := os.WriteFile(batchOutput, encoded, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", batchOutput, err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "%d rows: %d mismatch, %d match, %d failed\n",
			result.Total, result.Mismatches, result.Matches, result.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "write results to a .csv or .xlsx file instead of stdout")
}
