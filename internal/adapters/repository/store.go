// Package repository defines the durable assessment store interface and its
// in-memory and SQLite implementations.
package repository

import (
	"context"
	"time"
)

// Assessment is the persisted session record.
type Assessment struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	AssessorID   string            `json:"assessor_id"`
	AssesseeName string            `json:"assessee_name"`
	Context      string            `json:"context"`
	Notes        map[string]string `json:"notes,omitempty"`
	Finalized    bool              `json:"finalized"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewAssessment carries the fields needed to open a session record.
type NewAssessment struct {
	Title        string
	AssessorID   string
	AssesseeName string
	Context      string
}

// BehaviorScore is one persisted behavior checked flag.
type BehaviorScore struct {
	BehaviorID int  `json:"behavior_id"`
	Checked    bool `json:"checked"`
}

// Store provides read/write access to assessment records, behavior checked
// flags, and manual step overrides. An assessment with no persisted scores
// is a normal empty result, not an error.
type Store interface {
	// CreateAssessment opens a new session record and assigns its id.
	CreateAssessment(ctx context.Context, a NewAssessment) (Assessment, error)

	// GetAssessment returns a record by id, or ErrNotFound.
	GetAssessment(ctx context.Context, id string) (Assessment, error)

	// ListAssessments returns records newest first, optionally filtered by
	// assessee name. limit <= 0 means no limit.
	ListAssessments(ctx context.Context, assesseeName string, limit int) ([]Assessment, error)

	// UpdateAssessmentNotes saves the free-text coaching fields and marks
	// the record finalized.
	UpdateAssessmentNotes(ctx context.Context, id string, notes map[string]string) error

	// PutBehaviorScore upserts one behavior's checked flag.
	PutBehaviorScore(ctx context.Context, assessmentID string, behaviorID int, checked bool) error

	// BehaviorScores returns all persisted flags for an assessment.
	BehaviorScores(ctx context.Context, assessmentID string) ([]BehaviorScore, error)

	// PutStepOverride upserts a manual step level; level 0 removes it.
	PutStepOverride(ctx context.Context, assessmentID string, stepID, level int) error

	// StepOverrides returns the manual step levels for an assessment.
	StepOverrides(ctx context.Context, assessmentID string) (map[int]int, error)

	// Close releases store resources.
	Close() error
}
