package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"mismatch-predictor/internal/models"
)

var (
	evalInput   = models.DefaultOperatorJobInput()
	jsonOutput  bool
	interactive bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a single operator-job pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input := evalInput
		if interactive {
			prompted, err := promptInput(input)
			if err != nil {
				return err
			}
			input = prompted
		}

		evaluator, err := newEvaluator(cmd.Context())
		if err != nil {
			return err
		}

		evaluation, err := evaluator.Evaluate(cmd.Context(), input)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeEvaluationJSON(cmd.OutOrStdout(), evaluation)
		}
		writeEvaluationText(cmd.OutOrStdout(), evaluation)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	defaults := models.DefaultOperatorJobInput()
	evaluateCmd.Flags().IntVar(&evalInput.SkillLevel, "skill-level", defaults.SkillLevel, "operator skill level (1-5)")
	evaluateCmd.Flags().IntVar(&evalInput.JobSkillRequired, "job-skill-required", defaults.JobSkillRequired, "job skill required (1-5)")
	evaluateCmd.Flags().IntVar(&evalInput.SafetyIncidents, "safety-incidents", defaults.SafetyIncidents, "past safety incidents (0-10)")
	evaluateCmd.Flags().Float64Var(&evalInput.ProductQualityScore, "product-quality-score", defaults.ProductQualityScore, "product quality score (0-100)")
	evaluateCmd.Flags().Float64Var(&evalInput.ReworkCost, "rework-cost", defaults.ReworkCost, "rework cost (0-10000)")
	evaluateCmd.Flags().Float64Var(&evalInput.OperationalEfficiency, "operational-efficiency", defaults.OperationalEfficiency, "operational efficiency (0-1)")
	evaluateCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "print the evaluation as JSON")
	evaluateCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for every field")
}

// promptInput asks for each field in form order, starting from start.
func promptInput(start models.OperatorJobInput) (models.OperatorJobInput, error) {
	input := start

	for _, field := range models.InputFields {
		current, _ := input.Get(field.Name)

		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s (%g-%g)", field.Label, field.Min, field.Max),
			Default:   strconv.FormatFloat(current, 'f', -1, 64),
			AllowEdit: true,
			Validate:  fieldValidator(field),
		}

		raw, err := prompt.Run()
		if err != nil {
			return input, fmt.Errorf("prompt %s: %w", field.Name, err)
		}

		value, err := parseField(field, raw)
		if err != nil {
			return input, err
		}
		input.Set(field.Name, value)
	}

	return input, nil
}

func fieldValidator(field models.InputField) promptui.ValidateFunc {
	return func(raw string) error {
		_, err := parseField(field, raw)
		return err
	}
}

// parseField parses and range checks one prompted value.
func parseField(field models.InputField, raw string) (float64, error) {
	var value float64
	if field.Integer {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a whole number", models.ErrInvalidInput, field.Label)
		}
		value = float64(v)
	} else {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number", models.ErrInvalidInput, field.Label)
		}
		value = v
	}

	if value < field.Min || value > field.Max {
		return 0, fmt.Errorf("%w: %s must be between %g and %g", models.ErrInvalidInput, field.Label, field.Min, field.Max)
	}
	return value, nil
}

func writeEvaluationJSON(w io.Writer, evaluation *models.Evaluation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(evaluation)
}

func writeEvaluationText(w io.Writer, evaluation *models.Evaluation) {
	fmt.Fprintln(w, evaluation.Verdict.Label)
	fmt.Fprintln(w, evaluation.Verdict.Rationale)
	fmt.Fprintf(w, "Skill Gap: %s\n", evaluation.Explanation.SkillGapSummary)
	if a := evaluation.Explanation.Annotation; a != nil {
		kind := "Note"
		if a.Kind == models.AnnotationWarning {
			kind = "Warning"
		}
		fmt.Fprintf(w, "%s: %s\n", kind, a.Message)
	}
}
