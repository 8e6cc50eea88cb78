// Package models defines the data structures for the operator-job mismatch predictor.
package models

import (
	"errors"
	"fmt"
)

// Error taxonomy
var (
	ErrArtifactLoad = errors.New("artifact load failed")
	ErrInference    = errors.New("inference failed")
	ErrInvalidInput = errors.New("invalid input")
)

// Input domain errors
var (
	ErrInvalidSkillLevel            = fmt.Errorf("%w: skill_level must be between 1 and 5", ErrInvalidInput)
	ErrInvalidJobSkillRequired      = fmt.Errorf("%w: job_skill_required must be between 1 and 5", ErrInvalidInput)
	ErrInvalidSafetyIncidents       = fmt.Errorf("%w: safety_incidents must be between 0 and 10", ErrInvalidInput)
	ErrInvalidProductQuality        = fmt.Errorf("%w: product_quality_score must be between 0 and 100", ErrInvalidInput)
	ErrInvalidReworkCost            = fmt.Errorf("%w: rework_cost must be between 0 and 10000", ErrInvalidInput)
	ErrInvalidOperationalEfficiency = fmt.Errorf("%w: operational_efficiency must be between 0 and 1", ErrInvalidInput)
)

// ValidateOperatorJobInput checks every field against its declared domain.
// The first violation is returned.
func ValidateOperatorJobInput(in *OperatorJobInput) error {
	if in.SkillLevel < MinSkillLevel || in.SkillLevel > MaxSkillLevel {
		return ErrInvalidSkillLevel
	}

	if in.JobSkillRequired < MinSkillLevel || in.JobSkillRequired > MaxSkillLevel {
		return ErrInvalidJobSkillRequired
	}

	if in.SafetyIncidents < 0 || in.SafetyIncidents > MaxSafetyIncidentsInput {
		return ErrInvalidSafetyIncidents
	}

	if !inRange(in.ProductQualityScore, 0, MaxProductQualityScore) {
		return ErrInvalidProductQuality
	}

	if !inRange(in.ReworkCost, 0, MaxReworkCostInput) {
		return ErrInvalidReworkCost
	}

	if !inRange(in.OperationalEfficiency, 0, 1) {
		return ErrInvalidOperationalEfficiency
	}

	return nil
}

// inRange also rejects NaN, which fails every comparison.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
