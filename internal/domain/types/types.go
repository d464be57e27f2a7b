// Package types contains common types shared between the service and the
// HTTP API layer.
package types

// CreateAssessmentRequest carries the fields for opening a new assessment
// session. BaselineID optionally names a previous assessment whose checked
// set is cloned into the new session at creation.
type CreateAssessmentRequest struct {
	Title        string `json:"title"`
	AssessorID   string `json:"assessor_id"`
	AssesseeName string `json:"assessee_name"`
	Context      string `json:"context"`
	BaselineID   string `json:"baseline_id,omitempty"`
}

// RadarPoint is one step's actual score against its benchmark target.
type RadarPoint struct {
	StepID int    `json:"step_id"`
	Title  string `json:"title"`
	Score  int    `json:"score"`
	Target int    `json:"target"`
	Rank   int    `json:"rank"`
}

// Radar is the chart series comparing a session against the benchmark.
type Radar struct {
	AssessmentID string       `json:"assessment_id"`
	Points       []RadarPoint `json:"points"`
}

// FailedSave describes a behavior toggle that exhausted its write retries.
type FailedSave struct {
	AssessmentID string `json:"assessment_id"`
	BehaviorID   int    `json:"behavior_id"`
	Checked      bool   `json:"checked"`
}

// SaveStatus summarizes the toggle save pipeline for the "not saved"
// indicator.
type SaveStatus struct {
	Pending int          `json:"pending"`
	Failed  []FailedSave `json:"failed"`
}
