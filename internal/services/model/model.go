// Package model implements the strongly-typed classifier and scaler artifacts.
//
// Artifacts are JSON documents with an explicit parameter layout. Each document
// is checked against an embedded JSON Schema before it is decoded, and the
// decoded parameters are checked against the training feature schema.
package model

import (
	"encoding/json"
	"fmt"

	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/validation"
)

// Kind identifies the role of an artifact.
type Kind string

const (
	KindClassifier Kind = "classifier"
	KindScaler     Kind = "scaler"
)

// Classifier formats
const (
	FormatGBTree   = "gbtree"
	FormatLogistic = "logistic"
)

// Scaler formats
const (
	FormatStandard = "standard"
	FormatMinMax   = "minmax"
)

// DefaultThreshold is the probability above which class 1 is predicted.
const DefaultThreshold = 0.5

// Classifier produces the binary base prediction. Class 1 denotes mismatch.
// Implementations must be safe for concurrent use and never mutate their parameters.
type Classifier interface {
	Predict(features []float64) (models.Prediction, error)
	FeatureNames() []string
	Format() string
}

// Scaler normalizes the continuous features to the training scale.
// Implementations must be safe for concurrent use.
type Scaler interface {
	Transform(values []float64) ([]float64, error)
	FeatureNames() []string
	Format() string
}

// header is the part of every artifact needed to dispatch on format.
type header struct {
	Kind         Kind     `json:"kind"`
	Format       string   `json:"format"`
	Version      string   `json:"version,omitempty"`
	FeatureNames []string `json:"feature_names"`
}

var (
	classifierSchema = validation.MustSchema("classifier", classifierSchemaJSON)
	scalerSchema     = validation.MustSchema("scaler", scalerSchemaJSON)
)

// ParseClassifier validates and decodes a classifier artifact.
func ParseClassifier(data []byte) (Classifier, error) {
	if err := classifierSchema.Validate(data); err != nil {
		return nil, err
	}

	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to decode classifier header: %w", err)
	}

	if !models.SameColumns(h.FeatureNames, models.FeatureNames) {
		return nil, fmt.Errorf("classifier feature_names %v do not match training schema %v", h.FeatureNames, models.FeatureNames)
	}

	switch h.Format {
	case FormatGBTree:
		var p GBTreeParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode gbtree classifier: %w", err)
		}
		return NewGBTree(p)
	case FormatLogistic:
		var p LogisticParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode logistic classifier: %w", err)
		}
		return NewLogistic(p)
	default:
		return nil, fmt.Errorf("unsupported classifier format %q", h.Format)
	}
}

// ParseScaler validates and decodes a scaler artifact.
func ParseScaler(data []byte) (Scaler, error) {
	if err := scalerSchema.Validate(data); err != nil {
		return nil, err
	}

	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to decode scaler header: %w", err)
	}

	if !models.SameColumns(h.FeatureNames, models.ScaledFeatureNames) {
		return nil, fmt.Errorf("scaler feature_names %v do not match scaled columns %v", h.FeatureNames, models.ScaledFeatureNames)
	}

	switch h.Format {
	case FormatStandard:
		var p StandardParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode standard scaler: %w", err)
		}
		return NewStandardScaler(p)
	case FormatMinMax:
		var p MinMaxParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode minmax scaler: %w", err)
		}
		return NewMinMaxScaler(p)
	default:
		return nil, fmt.Errorf("unsupported scaler format %q", h.Format)
	}
}

func checkWidth(got, want int, what string) error {
	if got != want {
		return fmt.Errorf("%s: expected %d values, got %d", what, want, got)
	}
	return nil
}

func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
