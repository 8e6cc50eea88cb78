// Package models defines the data structures for the operator-job mismatch predictor.
package models

import (
	"time"
)

// Outcome is the binary verdict.
type Outcome string

const (
	OutcomeMismatch Outcome = "mismatch"
	OutcomeMatch    Outcome = "match"
)

// Label returns the headline shown for the outcome.
func (o Outcome) Label() string {
	if o == OutcomeMismatch {
		return "Mismatch Likely"
	}
	return "Match Likely"
}

// VerdictSource indicates which stage settled the verdict.
type VerdictSource string

const (
	VerdictSourceOverride VerdictSource = "override"
	VerdictSourceModel    VerdictSource = "model"
)

// Rationale strings
const (
	RationaleOverride      = "Operator performance is not suitable."
	RationaleModelMismatch = "Avoid assigning this operator."
	RationaleModelMatch    = "Operator is suitable for this job."
)

// Prediction is the classifier's raw output. Class 1 denotes mismatch.
type Prediction struct {
	Class       int      `json:"class"`
	Probability *float64 `json:"probability,omitempty"`
}

// Verdict is the combined model-and-override decision.
type Verdict struct {
	Outcome        Outcome       `json:"outcome"`
	Label          string        `json:"label"`
	Rationale      string        `json:"rationale"`
	Source         VerdictSource `json:"source"`
	TriggeredRules []string      `json:"triggered_rules,omitempty"`
	Prediction     Prediction    `json:"prediction"`
}

// IsMismatch reports whether the verdict is a mismatch.
func (v *Verdict) IsMismatch() bool {
	return v.Outcome == OutcomeMismatch
}

// AnnotationKind classifies the skill-gap note.
type AnnotationKind string

const (
	AnnotationWarning AnnotationKind = "warning"
	AnnotationInfo    AnnotationKind = "info"
)

// Annotation messages
const (
	AnnotationLargeGap      = "Skill gap is large. Operator may struggle."
	AnnotationOverqualified = "Operator is overqualified for this job."
)

// Annotation is a note shown next to the verdict. It never changes the verdict.
type Annotation struct {
	Kind    AnnotationKind `json:"kind"`
	Message string         `json:"message"`
}

// Explanation describes the skill gap behind a verdict.
type Explanation struct {
	SkillGapSummary string      `json:"skill_gap_summary"`
	Annotation      *Annotation `json:"annotation,omitempty"`
}

// Evaluation is the full result of one evaluation. It is never stored.
type Evaluation struct {
	ID          string           `json:"id"`
	Input       OperatorJobInput `json:"input"`
	Features    FeatureVector    `json:"features"`
	Verdict     Verdict          `json:"verdict"`
	Explanation Explanation      `json:"explanation"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
	Duration    time.Duration    `json:"duration_ns"`
}
