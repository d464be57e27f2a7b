// Package session holds the mutable state of one live assessment: the
// checked behavior set, manual step overrides, and free-text coaching
// notes. All derived scores are recomputed through the scoring package;
// callers never compute scores themselves.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/rubric"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/scoring"
)

// Saver receives persistence requests for individual behavior toggles.
// Calls are fire-and-forget from the aggregator's perspective; a failed
// save never rolls back in-memory state.
type Saver interface {
	SaveToggle(ctx context.Context, assessmentID string, behaviorID int, checked bool)
}

// SubstepResult is the derived state of one substep.
type SubstepResult struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Score        int    `json:"score"`
	CheckedCount int    `json:"checked_count"`
	Label        string `json:"label"`
	Rank         int    `json:"rank"`
}

// StepResult is the derived state of one step.
type StepResult struct {
	ID         int             `json:"id"`
	Title      string          `json:"title"`
	Order      int             `json:"order"`
	Score      int             `json:"score"`
	Target     int             `json:"target"`
	Label      string          `json:"label"`
	Rank       int             `json:"rank"`
	Overridden bool            `json:"overridden"`
	Substeps   []SubstepResult `json:"substeps"`
}

// Snapshot is the full derived state of a session at one point in time.
type Snapshot struct {
	AssessmentID string                 `json:"assessment_id"`
	TotalScore   int                    `json:"total_score"`
	CheckedCount int                    `json:"checked_count"`
	Overall      scoring.Classification `json:"overall"`
	Steps        []StepResult           `json:"steps"`
}

// Aggregator owns one assessment's mutable state. A single coach edits a
// session, but HTTP handlers may call concurrently, so access is guarded.
type Aggregator struct {
	mu sync.RWMutex

	assessmentID string
	rubric       *rubric.Rubric
	checked      scoring.Set
	overrides    map[int]int
	notes        map[string]string

	saver Saver
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithSaver wires the durable-store save pipeline for behavior toggles.
func WithSaver(s Saver) Option {
	return func(a *Aggregator) {
		a.saver = s
	}
}

// WithChecked seeds the checked set, e.g. when cloning a baseline from a
// previous assessment. The set is copied.
func WithChecked(checked scoring.Set) Option {
	return func(a *Aggregator) {
		a.checked = checked.Clone()
	}
}

// New creates an aggregator for one assessment over the given rubric.
func New(assessmentID string, r *rubric.Rubric, opts ...Option) *Aggregator {
	a := &Aggregator{
		assessmentID: assessmentID,
		rubric:       r,
		checked:      scoring.NewSet(),
		overrides:    make(map[int]int),
		notes:        make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AssessmentID returns the owning assessment's id.
func (a *Aggregator) AssessmentID() string {
	return a.assessmentID
}

// ToggleBehavior sets or clears a behavior's checked flag. It is idempotent:
// toggling into the current state changes nothing and emits no save request.
// Returns whether the set actually changed.
func (a *Aggregator) ToggleBehavior(ctx context.Context, behaviorID int, checked bool) (bool, error) {
	if _, ok := a.rubric.Behavior(behaviorID); !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownBehavior, behaviorID)
	}

	a.mu.Lock()
	already := a.checked.Has(behaviorID)
	if already == checked {
		a.mu.Unlock()
		return false, nil
	}
	if checked {
		a.checked.Add(behaviorID)
	} else {
		a.checked.Delete(behaviorID)
	}
	a.mu.Unlock()

	if a.saver != nil {
		a.saver.SaveToggle(ctx, a.assessmentID, behaviorID, checked)
	}
	return true, nil
}

// SetStepOverride records a manual step level. Level 0 clears the override
// and reverts the step to automatic classification.
func (a *Aggregator) SetStepOverride(_ context.Context, stepID, level int) error {
	if _, ok := a.rubric.Step(stepID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStep, stepID)
	}
	if level < 0 || level > rubric.MaxLevel {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if level == 0 {
		delete(a.overrides, stepID)
		return nil
	}
	a.overrides[stepID] = level
	return nil
}

// SetNote stores a free-text coaching field.
func (a *Aggregator) SetNote(field, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notes[field] = text
}

// Notes returns a copy of the free-text coaching fields.
func (a *Aggregator) Notes() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]string, len(a.notes))
	for k, v := range a.notes {
		out[k] = v
	}
	return out
}

// Rehydrate replaces the checked set from persisted behavior flags, used on
// session resume. IDs unknown to the rubric fail the whole rehydrate.
func (a *Aggregator) Rehydrate(checkedIDs []int) error {
	next := scoring.NewSet()
	for _, id := range checkedIDs {
		if _, ok := a.rubric.Behavior(id); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownBehavior, id)
		}
		next.Add(id)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.checked = next
	return nil
}

// CheckedSet returns an independent copy of the checked set.
func (a *Aggregator) CheckedSet() scoring.Set {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.checked.Clone()
}

// Overrides returns a copy of the manual step levels.
func (a *Aggregator) Overrides() map[int]int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[int]int, len(a.overrides))
	for k, v := range a.overrides {
		out[k] = v
	}
	return out
}

// Snapshot derives all scores and classifications from the current state.
func (a *Aggregator) Snapshot(_ context.Context) (Snapshot, error) {
	a.mu.RLock()
	checked := a.checked.Clone()
	overrides := make(map[int]int, len(a.overrides))
	for k, v := range a.overrides {
		overrides[k] = v
	}
	a.mu.RUnlock()

	snap := Snapshot{
		AssessmentID: a.assessmentID,
		CheckedCount: checked.Len(),
	}

	steps := a.rubric.Steps()
	snap.Steps = make([]StepResult, 0, len(steps))
	for i := range steps {
		step := &steps[i]

		score, err := scoring.StepScore(step, checked)
		if err != nil {
			return Snapshot{}, err
		}
		cls, err := scoring.StepClassification(step, checked, overrides[step.ID])
		if err != nil {
			return Snapshot{}, err
		}

		res := StepResult{
			ID:         step.ID,
			Title:      step.Title,
			Order:      step.Order,
			Score:      score,
			Target:     step.TargetScore,
			Label:      cls.Label,
			Rank:       cls.Rank,
			Overridden: overrides[step.ID] > 0,
			Substeps:   make([]SubstepResult, 0, len(step.Substeps)),
		}
		for j := range step.Substeps {
			sub := &step.Substeps[j]
			subScore, err := scoring.SubstepScore(sub, checked)
			if err != nil {
				return Snapshot{}, err
			}
			subCls, err := scoring.SubstepClassification(sub, checked)
			if err != nil {
				return Snapshot{}, err
			}
			count := 0
			for _, b := range sub.Behaviors {
				if checked.Has(b.ID) {
					count++
				}
			}
			res.Substeps = append(res.Substeps, SubstepResult{
				ID:           sub.ID,
				Title:        sub.Title,
				Score:        subScore,
				CheckedCount: count,
				Label:        subCls.Label,
				Rank:         subCls.Rank,
			})
		}
		snap.TotalScore += score
		snap.Steps = append(snap.Steps, res)
	}

	overall, err := scoring.OverallClassification(a.rubric, checked, overrides)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Overall = overall
	return snap, nil
}
