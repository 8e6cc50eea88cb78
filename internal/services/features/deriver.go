// Package features derives the classifier input from raw operator and job attributes.
package features

import (
	"mismatch-predictor/internal/models"
)

// Derive computes the skill-gap features for an input.
// It performs no validation; out-of-domain values pass through unchanged.
func Derive(input models.OperatorJobInput) models.FeatureVector {
	gap := input.JobSkillRequired - input.SkillLevel

	fv := models.FeatureVector{
		OperatorJobInput: input,
		SkillGap:         gap,
	}

	if gap < 0 {
		fv.IsOverqualified = 1
	}
	if gap > 0 {
		fv.IsUnderqualified = 1
	}

	return fv
}
