package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore implements Store with in-process maps. It is the default store
// when no database path is configured, and the test double elsewhere.
type MemStore struct {
	mu sync.RWMutex

	assessments map[string]Assessment
	scores      map[string]map[int]bool
	overrides   map[string]map[int]int

	newID func() string
	now   func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		assessments: make(map[string]Assessment),
		scores:      make(map[string]map[int]bool),
		overrides:   make(map[string]map[int]int),
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAssessment opens a new session record.
func (s *MemStore) CreateAssessment(_ context.Context, a NewAssessment) (Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := Assessment{
		ID:           s.newID(),
		Title:        a.Title,
		AssessorID:   a.AssessorID,
		AssesseeName: a.AssesseeName,
		Context:      a.Context,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.assessments[rec.ID] = rec
	return rec, nil
}

// GetAssessment returns a record by id.
func (s *MemStore) GetAssessment(_ context.Context, id string) (Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.assessments[id]
	if !ok {
		return Assessment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

// ListAssessments returns records newest first.
func (s *MemStore) ListAssessments(_ context.Context, assesseeName string, limit int) ([]Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Assessment, 0, len(s.assessments))
	for _, rec := range s.assessments {
		if assesseeName != "" && rec.AssesseeName != assesseeName {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateAssessmentNotes saves free-text fields and finalizes the record.
func (s *MemStore) UpdateAssessmentNotes(_ context.Context, id string, notes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.assessments[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if rec.Notes == nil {
		rec.Notes = make(map[string]string, len(notes))
	}
	for k, v := range notes {
		rec.Notes[k] = v
	}
	rec.Finalized = true
	rec.UpdatedAt = s.now().UTC()
	s.assessments[id] = rec
	return nil
}

// PutBehaviorScore upserts one behavior flag.
func (s *MemStore) PutBehaviorScore(_ context.Context, assessmentID string, behaviorID int, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assessments[assessmentID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, assessmentID)
	}
	flags, ok := s.scores[assessmentID]
	if !ok {
		flags = make(map[int]bool)
		s.scores[assessmentID] = flags
	}
	flags[behaviorID] = checked
	return nil
}

// BehaviorScores returns all persisted flags for an assessment, ordered by
// behavior id for stable output.
func (s *MemStore) BehaviorScores(_ context.Context, assessmentID string) ([]BehaviorScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.assessments[assessmentID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, assessmentID)
	}
	flags := s.scores[assessmentID]
	out := make([]BehaviorScore, 0, len(flags))
	for id, checked := range flags {
		out = append(out, BehaviorScore{BehaviorID: id, Checked: checked})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BehaviorID < out[j].BehaviorID })
	return out, nil
}

// PutStepOverride upserts a manual step level; 0 clears it.
func (s *MemStore) PutStepOverride(_ context.Context, assessmentID string, stepID, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assessments[assessmentID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, assessmentID)
	}
	levels, ok := s.overrides[assessmentID]
	if !ok {
		levels = make(map[int]int)
		s.overrides[assessmentID] = levels
	}
	if level == 0 {
		delete(levels, stepID)
		return nil
	}
	levels[stepID] = level
	return nil
}

// StepOverrides returns the manual step levels for an assessment.
func (s *MemStore) StepOverrides(_ context.Context, assessmentID string) (map[int]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.assessments[assessmentID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, assessmentID)
	}
	out := make(map[int]int, len(s.overrides[assessmentID]))
	for k, v := range s.overrides[assessmentID] {
		out[k] = v
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}
