// Package models defines the data structures for the operator-job mismatch predictor.
package models

// Input domain bounds, matching the form controls.
const (
	MinSkillLevel           = 1
	MaxSkillLevel           = 5
	MaxSafetyIncidentsInput = 10
	MaxProductQualityScore  = 100.0
	MaxReworkCostInput      = 10000.0
)

// OperatorJobInput holds the six attributes supplied for one evaluation.
type OperatorJobInput struct {
	SkillLevel            int     `json:"skill_level"`
	JobSkillRequired      int     `json:"job_skill_required"`
	SafetyIncidents       int     `json:"safety_incidents"`
	ProductQualityScore   float64 `json:"product_quality_score"`
	ReworkCost            float64 `json:"rework_cost"`
	OperationalEfficiency float64 `json:"operational_efficiency"`
}

// DefaultOperatorJobInput returns the values the form starts with.
func DefaultOperatorJobInput() OperatorJobInput {
	return OperatorJobInput{
		SkillLevel:            3,
		JobSkillRequired:      3,
		SafetyIncidents:       0,
		ProductQualityScore:   50.0,
		ReworkCost:            2500.0,
		OperationalEfficiency: 0.75,
	}
}

// InputField describes one input control: its label, bounds and step.
// Percent fields are fractions that batch files may write as "90%".
type InputField struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Step    float64
	Integer bool
	Percent bool
}

// InputFields lists the form controls in display order.
var InputFields = []InputField{
	{Name: "skill_level", Label: "Operator Skill Level", Min: MinSkillLevel, Max: MaxSkillLevel, Step: 1, Integer: true},
	{Name: "job_skill_required", Label: "Job Skill Required", Min: MinSkillLevel, Max: MaxSkillLevel, Step: 1, Integer: true},
	{Name: "safety_incidents", Label: "Past Safety Incidents", Min: 0, Max: MaxSafetyIncidentsInput, Step: 1, Integer: true},
	{Name: "product_quality_score", Label: "Product Quality Score", Min: 0, Max: MaxProductQualityScore, Step: 0.1},
	{Name: "rework_cost", Label: "Rework Cost", Min: 0, Max: MaxReworkCostInput, Step: 100},
	{Name: "operational_efficiency", Label: "Operational Efficiency", Min: 0, Max: 1, Step: 0.01, Percent: true},
}

// Get returns the named field as a float64.
func (in *OperatorJobInput) Get(name string) (float64, bool) {
	switch name {
	case "skill_level":
		return float64(in.SkillLevel), true
	case "job_skill_required":
		return float64(in.JobSkillRequired), true
	case "safety_incidents":
		return float64(in.SafetyIncidents), true
	case "product_quality_score":
		return in.ProductQualityScore, true
	case "rework_cost":
		return in.ReworkCost, true
	case "operational_efficiency":
		return in.OperationalEfficiency, true
	}
	return 0, false
}

// Set assigns the named field. Integer fields are truncated.
func (in *OperatorJobInput) Set(name string, value float64) bool {
	switch name {
	case "skill_level":
		in.SkillLevel = int(value)
	case "job_skill_required":
		in.JobSkillRequired = int(value)
	case "safety_incidents":
		in.SafetyIncidents = int(value)
	case "product_quality_score":
		in.ProductQualityScore = value
	case "rework_cost":
		in.ReworkCost = value
	case "operational_efficiency":
		in.OperationalEfficiency = value
	default:
		return false
	}
	return true
}
