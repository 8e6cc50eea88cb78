// Package decision turns a feature vector into a verdict and an explanation.
package decision

import (
	"fmt"

	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/artifacts"
)

// Safety override thresholds. All comparisons are strict.
const (
	MaxSafetyIncidents       = 5
	MinOperationalEfficiency = 0.3
	MaxReworkCost            = 3000.0
)

// Override rule names
const (
	RuleSafetyIncidents       = "safety_incidents"
	RuleOperationalEfficiency = "operational_efficiency"
	RuleReworkCost            = "rework_cost"
)

// Engine combines the classifier prediction with the safety override.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	set *artifacts.Set
}

// NewEngine creates an engine over a loaded artifact set.
func NewEngine(set *artifacts.Set) (*Engine, error) {
	if set == nil || set.Classifier == nil || set.Scaler == nil {
		return nil, fmt.Errorf("%w: engine requires a classifier and a scaler", models.ErrArtifactLoad)
	}
	return &Engine{set: set}, nil
}

// Decide scales the continuous features, runs the classifier and applies the override.
// The classifier always runs, so an inference failure fails the decision even when
// the override would have fired.
func (e *Engine) Decide(fv models.FeatureVector) (*models.Verdict, error) {
	vector, err := e.scale(fv)
	if err != nil {
		return nil, fmt.Errorf("%w: scaling failed: %w", models.ErrInference, err)
	}

	prediction, err := e.set.Classifier.Predict(vector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInference, err)
	}
	if prediction.Class != 0 && prediction.Class != 1 {
		return nil, fmt.Errorf("%w: classifier returned class %d", models.ErrInference, prediction.Class)
	}

	if rules := OverrideRules(fv); len(rules) > 0 {
		return &models.Verdict{
			Outcome:        models.OutcomeMismatch,
			Label:          models.OutcomeMismatch.Label(),
			Rationale:      models.RationaleOverride,
			Source:         models.VerdictSourceOverride,
			TriggeredRules: rules,
			Prediction:     prediction,
		}, nil
	}

	verdict := &models.Verdict{
		Outcome:    models.OutcomeMatch,
		Rationale:  models.RationaleModelMatch,
		Source:     models.VerdictSourceModel,
		Prediction: prediction,
	}
	if prediction.Class == 1 {
		verdict.Outcome = models.OutcomeMismatch
		verdict.Rationale = models.RationaleModelMismatch
	}
	verdict.Label = verdict.Outcome.Label()

	return verdict, nil
}

// scale returns a copy of the raw vector with the continuous columns replaced
// by their scaled values.
func (e *Engine) scale(fv models.FeatureVector) ([]float64, error) {
	vector := fv.Values()

	scaled, err := e.set.Scaler.Transform(fv.ScaledValues())
	if err != nil {
		return nil, err
	}
	if len(scaled) != len(models.ScaledFeatureIndexes) {
		return nil, fmt.Errorf("scaler returned %d values, expected %d", len(scaled), len(models.ScaledFeatureIndexes))
	}

	for i, idx := range models.ScaledFeatureIndexes {
		vector[idx] = scaled[i]
	}
	return vector, nil
}

// OverrideRules returns the safety rules the raw features violate, in a fixed order.
func OverrideRules(fv models.FeatureVector) []string {
	var rules []string
	if fv.SafetyIncidents > MaxSafetyIncidents {
		rules = append(rules, RuleSafetyIncidents)
	}
	if fv.OperationalEfficiency < MinOperationalEfficiency {
		rules = append(rules, RuleOperationalEfficiency)
	}
	if fv.ReworkCost > MaxReworkCost {
		rules = append(rules, RuleReworkCost)
	}
	return rules
}
