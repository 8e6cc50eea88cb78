package decision

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mismatch-predictor/internal/metrics"
	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/features"
	"mismatch-predictor/internal/utils"
)

// Evaluator runs one complete evaluation per call.
type Evaluator struct {
	engine        *Engine
	metrics       *metrics.Metrics
	validateInput bool
	now           func() time.Time
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithMetrics records evaluation counters on m.
func WithMetrics(m *metrics.Metrics) EvaluatorOption {
	return func(e *Evaluator) { e.metrics = m }
}

// WithInputValidation toggles range validation of the six inputs.
func WithInputValidation(enabled bool) EvaluatorOption {
	return func(e *Evaluator) { e.validateInput = enabled }
}

// NewEvaluator creates an evaluator. Input validation is on by default.
func NewEvaluator(engine *Engine, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		engine:        engine,
		validateInput: true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying decision engine.
func (e *Evaluator) Engine() *Engine {
	return e.engine
}

// Evaluate validates, derives, decides and explains a single input.
func (e *Evaluator) Evaluate(ctx context.Context, input models.OperatorJobInput) (*models.Evaluation, error) {
	logger := utils.GetLogger()
	start := e.now()
	id := uuid.New().String()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.validateInput {
		if err := models.ValidateOperatorJobInput(&input); err != nil {
			logger.Warn("Rejected operator-job input",
				zap.String("evaluation_id", id),
				zap.Error(err),
			)
			e.recordError(metrics.ErrorKindInvalidInput)
			return nil, err
		}
	}

	fv := features.Derive(input)

	verdict, err := e.engine.Decide(fv)
	if err != nil {
		logger.Error("Evaluation failed",
			zap.String("evaluation_id", id),
			zap.Error(err),
		)
		if errors.Is(err, models.ErrInference) {
			e.recordError(metrics.ErrorKindInference)
		} else {
			e.recordError("")
		}
		return nil, err
	}

	evaluation := &models.Evaluation{
		ID:          id,
		Input:       input,
		Features:    fv,
		Verdict:     *verdict,
		Explanation: Explain(fv),
		EvaluatedAt: start.UTC(),
		Duration:    e.now().Sub(start),
	}

	if e.metrics != nil {
		e.metrics.RecordEvaluation(string(verdict.Outcome), string(verdict.Source), verdict.TriggeredRules, evaluation.Duration)
	}

	logger.Info("Evaluation completed",
		zap.String("evaluation_id", id),
		zap.String("outcome", string(verdict.Outcome)),
		zap.String("source", string(verdict.Source)),
		zap.Strings("triggered_rules", verdict.TriggeredRules),
		zap.Int("prediction", verdict.Prediction.Class),
		zap.Int("skill_gap", fv.SkillGap),
		zap.Duration("duration", evaluation.Duration),
	)

	return evaluation, nil
}

func (e *Evaluator) recordError(kind string) {
	if e.metrics != nil {
		e.metrics.RecordError(kind)
	}
}
