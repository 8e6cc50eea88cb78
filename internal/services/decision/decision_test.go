package decision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mismatch-predictor/internal/metrics"
	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/services/features"
)

// stubClassifier returns a fixed class and records the vector it saw.
type stubClassifier struct {
	class int
	err   error
	seen  []float64
	calls int
}

func (s *stubClassifier) Predict(features []float64) (models.Prediction, error) {
	s.calls++
	s.seen = append([]float64(nil), features...)
	if s.err != nil {
		return models.Prediction{}, s.err
	}
	return models.Prediction{Class: s.class}, nil
}

func (s *stubClassifier) FeatureNames() []string { return models.FeatureNames }
func (s *stubClassifier) Format() string         { return "stub" }

// offsetScaler adds 1000 to every value and records its input.
type offsetScaler struct {
	seen []float64
}

func (s *offsetScaler) Transform(values []float64) ([]float64, error) {
	s.seen = append([]float64(nil), values...)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v + 1000
	}
	return out, nil
}

func (s *offsetScaler) FeatureNames() []string { return models.ScaledFeatureNames }
func (s *offsetScaler) Format() string         { return "stub" }

func newStubEngine(t *testing.T, classifier *stubClassifier, scaler *offsetScaler) *Engine {
	t.Helper()
	set, err := artifacts.NewSet(classifier, scaler)
	require.NoError(t, err)
	engine, err := NewEngine(set)
	require.NoError(t, err)
	return engine
}

func bundledEngine(t *testing.T) *Engine {
	t.Helper()
	set, err := artifacts.Load(context.Background(), &artifacts.FileSource{
		ClassifierPath: "../../../artifacts/mismatch_classifier.json",
		ScalerPath:     "../../../artifacts/mismatch_scaler.json",
	})
	require.NoError(t, err)
	engine, err := NewEngine(set)
	require.NoError(t, err)
	return engine
}

func safeInput() models.OperatorJobInput {
	return models.OperatorJobInput{
		SkillLevel:            3,
		JobSkillRequired:      3,
		SafetyIncidents:       0,
		ProductQualityScore:   80,
		ReworkCost:            1000,
		OperationalEfficiency: 0.9,
	}
}

func TestNewEngine_RequiresArtifacts(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, models.ErrArtifactLoad)
}

func TestDecide_ModelPassThrough(t *testing.T) {
	tests := []struct {
		name      string
		class     int
		outcome   models.Outcome
		rationale string
	}{
		{"class 0 is a match", 0, models.OutcomeMatch, models.RationaleModelMatch},
		{"class 1 is a mismatch", 1, models.OutcomeMismatch, models.RationaleModelMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newStubEngine(t, &stubClassifier{class: tt.class}, &offsetScaler{})

			verdict, err := engine.Decide(features.Derive(safeInput()))
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, verdict.Outcome)
			assert.Equal(t, tt.rationale, verdict.Rationale)
			assert.Equal(t, tt.outcome.Label(), verdict.Label)
			assert.Equal(t, models.VerdictSourceModel, verdict.Source)
			assert.Empty(t, verdict.TriggeredRules)
		})
	}
}

func TestDecide_OverridePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.OperatorJobInput)
		rules  []string
	}{
		{"safety incidents above 5", func(in *models.OperatorJobInput) { in.SafetyIncidents = 6 }, []string{RuleSafetyIncidents}},
		{"efficiency below 0.3", func(in *models.OperatorJobInput) { in.OperationalEfficiency = 0.29 }, []string{RuleOperationalEfficiency}},
		{"rework cost above 3000", func(in *models.OperatorJobInput) { in.ReworkCost = 3000.01 }, []string{RuleReworkCost}},
		{"all rules", func(in *models.OperatorJobInput) {
			in.SafetyIncidents = 10
			in.OperationalEfficiency = 0
			in.ReworkCost = 10000
		}, []string{RuleSafetyIncidents, RuleOperationalEfficiency, RuleReworkCost}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &stubClassifier{class: 0}
			engine := newStubEngine(t, classifier, &offsetScaler{})

			input := safeInput()
			tt.mutate(&input)

			verdict, err := engine.Decide(features.Derive(input))
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeMismatch, verdict.Outcome)
			assert.Equal(t, models.RationaleOverride, verdict.Rationale)
			assert.Equal(t, models.VerdictSourceOverride, verdict.Source)
			assert.Equal(t, tt.rules, verdict.TriggeredRules)
			assert.Equal(t, 0, verdict.Prediction.Class, "prediction is kept for reference")
			assert.Equal(t, 1, classifier.calls)
		})
	}
}

func TestDecide_ThresholdsAreStrict(t *testing.T) {
	engine := newStubEngine(t, &stubClassifier{class: 0}, &offsetScaler{})

	input := safeInput()
	input.SafetyIncidents = MaxSafetyIncidents
	input.OperationalEfficiency = MinOperationalEfficiency
	input.ReworkCost = MaxReworkCost

	verdict, err := engine.Decide(features.Derive(input))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeMatch, verdict.Outcome)
}

func TestDecide_OverrideUsesRawValues(t *testing.T) {
	// The offset scaler would push every scaled value far above the thresholds.
	scaler := &offsetScaler{}
	engine := newStubEngine(t, &stubClassifier{class: 0}, scaler)

	verdict, err := engine.Decide(features.Derive(safeInput()))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeMatch, verdict.Outcome)
}

func TestDecide_ScalesOnlyContinuousFeatures(t *testing.T) {
	classifier := &stubClassifier{}
	scaler := &offsetScaler{}
	engine := newStubEngine(t, classifier, scaler)

	fv := features.Derive(safeInput())
	raw := fv.Values()

	_, err := engine.Decide(fv)
	require.NoError(t, err)

	assert.Equal(t, []float64{80, 1000, 0.9}, scaler.seen)
	require.Len(t, classifier.seen, models.FeatureCount)
	for i := range raw {
		switch i {
		case models.IndexProductQualityScore, models.IndexReworkCost, models.IndexOperationalEfficiency:
			assert.Equal(t, raw[i]+1000, classifier.seen[i], "feature %s", models.FeatureNames[i])
		default:
			assert.Equal(t, raw[i], classifier.seen[i], "feature %s", models.FeatureNames[i])
		}
	}
	assert.Equal(t, raw, fv.Values(), "input vector is not mutated")
}

func TestDecide_InferenceErrorBeatsOverride(t *testing.T) {
	engine := newStubEngine(t, &stubClassifier{err: errors.New("boom")}, &offsetScaler{})

	input := safeInput()
	input.SafetyIncidents = 9

	verdict, err := engine.Decide(features.Derive(input))
	assert.Nil(t, verdict)
	assert.ErrorIs(t, err, models.ErrInference)
}

func TestDecide_RejectsNonBinaryClass(t *testing.T) {
	engine := newStubEngine(t, &stubClassifier{class: 2}, &offsetScaler{})

	_, err := engine.Decide(features.Derive(safeInput()))
	assert.ErrorIs(t, err, models.ErrInference)
}

func TestDecide_Idempotent(t *testing.T) {
	engine := bundledEngine(t)
	fv := features.Derive(safeInput())

	first, err := engine.Decide(fv)
	require.NoError(t, err)
	second, err := engine.Decide(fv)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name     string
		skill    int
		required int
		summary  string
		kind     models.AnnotationKind
		message  string
	}{
		{"large gap warns", 1, 4, "4 - 1 = 3", models.AnnotationWarning, models.AnnotationLargeGap},
		{"gap of two warns", 2, 4, "4 - 2 = 2", models.AnnotationWarning, models.AnnotationLargeGap},
		{"overqualified informs", 5, 3, "3 - 5 = -2", models.AnnotationInfo, models.AnnotationOverqualified},
		{"gap of one is silent", 3, 4, "4 - 3 = 1", "", ""},
		{"no gap is silent", 3, 3, "3 - 3 = 0", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := safeInput()
			input.SkillLevel = tt.skill
			input.JobSkillRequired = tt.required

			explanation := Explain(features.Derive(input))
			assert.Equal(t, tt.summary, explanation.SkillGapSummary)
			if tt.message == "" {
				assert.Nil(t, explanation.Annotation)
				return
			}
			require.NotNil(t, explanation.Annotation)
			assert.Equal(t, tt.kind, explanation.Annotation.Kind)
			assert.Equal(t, tt.message, explanation.Annotation.Message)
		})
	}
}

func TestExplain_IndependentOfOtherFeatures(t *testing.T) {
	a := safeInput()
	b := safeInput()
	b.SafetyIncidents = 10
	b.ReworkCost = 9000
	b.OperationalEfficiency = 0.1

	assert.Equal(t, Explain(features.Derive(a)), Explain(features.Derive(b)))
}

func TestEvaluate_Scenarios(t *testing.T) {
	evaluator := NewEvaluator(bundledEngine(t))

	tests := []struct {
		name       string
		input      models.OperatorJobInput
		gap        int
		outcome    models.Outcome
		source     models.VerdictSource
		annotation string
	}{
		{
			name:    "balanced operator",
			input:   safeInput(),
			gap:     0,
			outcome: models.OutcomeMatch,
			source:  models.VerdictSourceModel,
		},
		{
			name: "overqualified operator",
			input: models.OperatorJobInput{
				SkillLevel: 5, JobSkillRequired: 1, ProductQualityScore: 80,
				ReworkCost: 500, OperationalEfficiency: 0.9,
			},
			gap:        -4,
			outcome:    models.OutcomeMatch,
			source:     models.VerdictSourceModel,
			annotation: models.AnnotationOverqualified,
		},
		{
			name: "unsafe operator",
			input: models.OperatorJobInput{
				SkillLevel: 3, JobSkillRequired: 3, SafetyIncidents: 8, ProductQualityScore: 80,
				ReworkCost: 1000, OperationalEfficiency: 0.9,
			},
			gap:     0,
			outcome: models.OutcomeMismatch,
			source:  models.VerdictSourceOverride,
		},
		{
			name: "costly rework",
			input: models.OperatorJobInput{
				SkillLevel: 3, JobSkillRequired: 3, ProductQualityScore: 80,
				ReworkCost: 5000, OperationalEfficiency: 0.9,
			},
			gap:     0,
			outcome: models.OutcomeMismatch,
			source:  models.VerdictSourceOverride,
		},
		{
			name: "large skill gap",
			input: models.OperatorJobInput{
				SkillLevel: 1, JobSkillRequired: 4, ProductQualityScore: 50,
				ReworkCost: 500, OperationalEfficiency: 0.9,
			},
			gap:        3,
			outcome:    models.OutcomeMismatch,
			source:     models.VerdictSourceModel,
			annotation: models.AnnotationLargeGap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluation, err := evaluator.Evaluate(context.Background(), tt.input)
			require.NoError(t, err)

			assert.NotEmpty(t, evaluation.ID)
			assert.Equal(t, tt.input, evaluation.Input)
			assert.Equal(t, tt.gap, evaluation.Features.SkillGap)
			assert.Equal(t, tt.outcome, evaluation.Verdict.Outcome)
			assert.Equal(t, tt.source, evaluation.Verdict.Source)
			if tt.annotation == "" {
				assert.Nil(t, evaluation.Explanation.Annotation)
			} else {
				require.NotNil(t, evaluation.Explanation.Annotation)
				assert.Equal(t, tt.annotation, evaluation.Explanation.Annotation.Message)
			}
		})
	}
}

func TestEvaluate_RejectsInvalidInput(t *testing.T) {
	m := metrics.New()
	classifier := &stubClassifier{}
	evaluator := NewEvaluator(newStubEngine(t, classifier, &offsetScaler{}), WithMetrics(m))

	input := safeInput()
	input.SkillLevel = 7

	_, err := evaluator.Evaluate(context.Background(), input)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.ErrorIs(t, err, models.ErrInvalidSkillLevel)
	assert.Zero(t, classifier.calls)
	assert.Equal(t, 1.0, counterValue(t, m, "mismatch_evaluation_errors_total", metrics.ErrorKindInvalidInput))
}

func TestEvaluate_ValidationDisabled(t *testing.T) {
	evaluator := NewEvaluator(newStubEngine(t, &stubClassifier{}, &offsetScaler{}), WithInputValidation(false))

	input := safeInput()
	input.SkillLevel = 7

	evaluation, err := evaluator.Evaluate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, -4, evaluation.Features.SkillGap)
}

func TestEvaluate_InferenceFailure(t *testing.T) {
	m := metrics.New()
	evaluator := NewEvaluator(newStubEngine(t, &stubClassifier{err: errors.New("boom")}, &offsetScaler{}), WithMetrics(m))

	_, err := evaluator.Evaluate(context.Background(), safeInput())
	assert.ErrorIs(t, err, models.ErrInference)
	assert.Equal(t, 1.0, counterValue(t, m, "mismatch_evaluation_errors_total", metrics.ErrorKindInference))

	// The evaluator stays usable after a failure.
	evaluator = NewEvaluator(evaluator.Engine())
	_, err = evaluator.Evaluate(context.Background(), safeInput())
	assert.ErrorIs(t, err, models.ErrInference)
}

func TestEvaluate_RecordsOutcome(t *testing.T) {
	m := metrics.New()
	evaluator := NewEvaluator(newStubEngine(t, &stubClassifier{class: 0}, &offsetScaler{}), WithMetrics(m))

	input := safeInput()
	input.ReworkCost = 4000

	_, err := evaluator.Evaluate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1.0, counterValue(t, m, "mismatch_override_rules_total", RuleReworkCost))
}

func TestEvaluate_CanceledContext(t *testing.T) {
	evaluator := NewEvaluator(newStubEngine(t, &stubClassifier{}, &offsetScaler{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := evaluator.Evaluate(ctx, safeInput())
	assert.ErrorIs(t, err, context.Canceled)
}

// counterValue sums the samples of a counter family whose first label equals label.
func counterValue(t *testing.T, m *metrics.Metrics, name, label string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := metric.GetLabel()
			if len(labels) > 0 && labels[0].GetValue() == label {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}
