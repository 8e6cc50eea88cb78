package model

import (
	"fmt"

	"mismatch-predictor/internal/models"
)

// LogisticParams are the parameters of a binary logistic regression.
type LogisticParams struct {
	Version      string    `json:"version,omitempty"`
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Threshold    *float64  `json:"threshold,omitempty"`
}

// Logistic is a linear classifier with a logistic link.
type Logistic struct {
	featureNames []string
	coefficients []float64
	intercept    float64
	threshold    float64
}

// NewLogistic builds a logistic classifier.
func NewLogistic(p LogisticParams) (*Logistic, error) {
	if len(p.FeatureNames) == 0 {
		return nil, fmt.Errorf("logistic: no feature_names")
	}
	if err := checkWidth(len(p.Coefficients), len(p.FeatureNames), "logistic coefficients"); err != nil {
		return nil, err
	}

	threshold, err := resolveThreshold(p.Threshold)
	if err != nil {
		return nil, fmt.Errorf("logistic: %w", err)
	}

	coef := make([]float64, len(p.Coefficients))
	copy(coef, p.Coefficients)

	return &Logistic{
		featureNames: cloneNames(p.FeatureNames),
		coefficients: coef,
		intercept:    p.Intercept,
		threshold:    threshold,
	}, nil
}

// Predict computes sigmoid(intercept + coefficients . features).
func (l *Logistic) Predict(features []float64) (models.Prediction, error) {
	if err := checkWidth(len(features), len(l.coefficients), "logistic input"); err != nil {
		return models.Prediction{}, err
	}

	z := l.intercept
	for i, c := range l.coefficients {
		z += c * features[i]
	}

	return classify(sigmoid(z), l.threshold), nil
}

// FeatureNames returns the training columns.
func (l *Logistic) FeatureNames() []string {
	return cloneNames(l.featureNames)
}

// Format returns FormatLogistic.
func (l *Logistic) Format() string {
	return FormatLogistic
}
