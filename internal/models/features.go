// Package models defines the data structures for the operator-job mismatch predictor.
package models

// FeatureNames is the column order the classifier was trained on.
// Reordering silently corrupts predictions.
var FeatureNames = []string{
	"skill_level",
	"job_skill_required",
	"skill_gap",
	"is_overqualified",
	"is_underqualified",
	"safety_incidents",
	"product_quality_score",
	"rework_cost",
	"operational_efficiency",
}

// ScaledFeatureNames are the continuous columns the scaler was fit on, in order.
var ScaledFeatureNames = []string{
	"product_quality_score",
	"rework_cost",
	"operational_efficiency",
}

// FeatureCount is the width of the classifier input.
const FeatureCount = 9

// Positions of the scaled columns within FeatureNames.
const (
	IndexProductQualityScore   = 6
	IndexReworkCost            = 7
	IndexOperationalEfficiency = 8
)

// ScaledFeatureIndexes maps ScaledFeatureNames onto FeatureNames positions.
var ScaledFeatureIndexes = []int{
	IndexProductQualityScore,
	IndexReworkCost,
	IndexOperationalEfficiency,
}

// FeatureVector is an OperatorJobInput plus the derived skill-gap features.
type FeatureVector struct {
	OperatorJobInput
	SkillGap         int `json:"skill_gap"`
	IsOverqualified  int `json:"is_overqualified"`
	IsUnderqualified int `json:"is_underqualified"`
}

// Values returns the raw features in FeatureNames order.
func (f *FeatureVector) Values() []float64 {
	return []float64{
		float64(f.SkillLevel),
		float64(f.JobSkillRequired),
		float64(f.SkillGap),
		float64(f.IsOverqualified),
		float64(f.IsUnderqualified),
		float64(f.SafetyIncidents),
		f.ProductQualityScore,
		f.ReworkCost,
		f.OperationalEfficiency,
	}
}

// ScaledValues returns the continuous features in ScaledFeatureNames order.
func (f *FeatureVector) ScaledValues() []float64 {
	return []float64{
		f.ProductQualityScore,
		f.ReworkCost,
		f.OperationalEfficiency,
	}
}

// SameColumns reports whether got matches want exactly, order included.
func SameColumns(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
