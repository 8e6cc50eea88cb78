package model

import (
	"fmt"
)

// StandardParams are the parameters of a standard (z-score) scaler.
type StandardParams struct {
	Version      string    `json:"version,omitempty"`
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// StandardScaler computes (x - mean) / scale per column.
type StandardScaler struct {
	featureNames []string
	mean         []float64
	scale        []float64
}

// NewStandardScaler builds a standard scaler. Zero scales are treated as 1.
func NewStandardScaler(p StandardParams) (*StandardScaler, error) {
	width := len(p.FeatureNames)
	if err := checkWidth(len(p.Mean), width, "standard scaler mean"); err != nil {
		return nil, err
	}
	if err := checkWidth(len(p.Scale), width, "standard scaler scale"); err != nil {
		return nil, err
	}

	s := &StandardScaler{
		featureNames: cloneNames(p.FeatureNames),
		mean:         make([]float64, width),
		scale:        make([]float64, width),
	}
	copy(s.mean, p.Mean)
	for i, v := range p.Scale {
		if v < 0 {
			return nil, fmt.Errorf("standard scaler: negative scale %v for %s", v, p.FeatureNames[i])
		}
		s.scale[i] = nonZero(v)
	}

	return s, nil
}

// Transform returns a new slice; the input is left untouched.
func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if err := checkWidth(len(values), len(s.mean), "standard scaler input"); err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// FeatureNames returns the columns the scaler was fit on.
func (s *StandardScaler) FeatureNames() []string {
	return cloneNames(s.featureNames)
}

// Format returns FormatStandard.
func (s *StandardScaler) Format() string {
	return FormatStandard
}

// MinMaxParams are the parameters of a min-max scaler.
type MinMaxParams struct {
	Version      string    `json:"version,omitempty"`
	FeatureNames []string  `json:"feature_names"`
	DataMin      []float64 `json:"data_min"`
	DataMax      []float64 `json:"data_max"`
	FeatureRange []float64 `json:"feature_range,omitempty"`
}

// MinMaxScaler maps [data_min, data_max] onto feature_range per column.
type MinMaxScaler struct {
	featureNames []string
	dataMin      []float64
	dataRange    []float64
	lo, hi       float64
}

// NewMinMaxScaler builds a min-max scaler. Zero ranges are treated as 1.
func NewMinMaxScaler(p MinMaxParams) (*MinMaxScaler, error) {
	width := len(p.FeatureNames)
	if err := checkWidth(len(p.DataMin), width, "minmax scaler data_min"); err != nil {
		return nil, err
	}
	if err := checkWidth(len(p.DataMax), width, "minmax scaler data_max"); err != nil {
		return nil, err
	}

	lo, hi := 0.0, 1.0
	if len(p.FeatureRange) > 0 {
		if err := checkWidth(len(p.FeatureRange), 2, "minmax scaler feature_range"); err != nil {
			return nil, err
		}
		lo, hi = p.FeatureRange[0], p.FeatureRange[1]
		if lo >= hi {
			return nil, fmt.Errorf("minmax scaler: feature_range [%v, %v] is empty", lo, hi)
		}
	}

	s := &MinMaxScaler{
		featureNames: cloneNames(p.FeatureNames),
		dataMin:      make([]float64, width),
		dataRange:    make([]float64, width),
		lo:           lo,
		hi:           hi,
	}
	for i := range p.DataMin {
		if p.DataMax[i] < p.DataMin[i] {
			return nil, fmt.Errorf("minmax scaler: data_max below data_min for %s", p.FeatureNames[i])
		}
		s.dataMin[i] = p.DataMin[i]
		s.dataRange[i] = nonZero(p.DataMax[i] - p.DataMin[i])
	}

	return s, nil
}

// Transform returns a new slice; the input is left untouched.
func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if err := checkWidth(len(values), len(s.dataMin), "minmax scaler input"); err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		std := (v - s.dataMin[i]) / s.dataRange[i]
		out[i] = std*(s.hi-s.lo) + s.lo
	}
	return out, nil
}

// FeatureNames returns the columns the scaler was fit on.
func (s *MinMaxScaler) FeatureNames() []string {
	return cloneNames(s.featureNames)
}

// Format returns FormatMinMax.
func (s *MinMaxScaler) Format() string {
	return FormatMinMax
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
