package decision

import (
	"fmt"

	"mismatch-predictor/internal/models"
)

// LargeSkillGap is the gap above which the operator is flagged as likely to struggle.
const LargeSkillGap = 1

// Explain describes the skill gap. It depends on nothing but the gap and
// never changes the verdict.
func Explain(fv models.FeatureVector) models.Explanation {
	explanation := models.Explanation{
		SkillGapSummary: fmt.Sprintf("%d - %d = %d", fv.JobSkillRequired, fv.SkillLevel, fv.SkillGap),
	}

	switch {
	case fv.SkillGap > LargeSkillGap:
		explanation.Annotation = &models.Annotation{
			Kind:    models.AnnotationWarning,
			Message: models.AnnotationLargeGap,
		}
	case fv.SkillGap < 0:
		explanation.Annotation = &models.Annotation{
			Kind:    models.AnnotationInfo,
			Message: models.AnnotationOverqualified,
		}
	}

	return explanation
}
