// Package rubric defines the static assessment hierarchy: ordered Steps,
// their Substeps, and the individual Behaviors a coach can observe. The
// hierarchy is seeded once per process and read-only afterwards.
package rubric

import (
	"fmt"
	"sort"
)

// Proficiency level bounds for behaviors.
const (
	MinLevel = 1
	MaxLevel = 4
)

// Behavior is a single observable action, weighted by a proficiency level.
type Behavior struct {
	ID          int    `koanf:"id"`
	SubstepID   int    `koanf:"substep_id"`
	Description string `koanf:"description"`
	Level       int    `koanf:"level"`
	Order       int    `koanf:"order"`
}

// Substep groups related behaviors under a step.
type Substep struct {
	ID        int        `koanf:"id"`
	StepID    int        `koanf:"step_id"`
	Title     string     `koanf:"title"`
	Order     int        `koanf:"order"`
	Behaviors []Behavior `koanf:"behaviors"`
}

// Thresholds carries hand-tuned step classification cutoffs. When present on
// a Step they replace the structural level-count computation: the step score
// is compared inclusively against Master, then Experienced, then Qualified.
type Thresholds struct {
	Qualified   int `koanf:"qualified"`
	Experienced int `koanf:"experienced"`
	Master      int `koanf:"master"`
}

// Step is a top-level phase of the sales conversation.
type Step struct {
	ID          int         `koanf:"id"`
	Title       string      `koanf:"title"`
	Description string      `koanf:"description"`
	Order       int         `koanf:"order"`
	TargetScore int         `koanf:"target_score"`
	Thresholds  *Thresholds `koanf:"thresholds"`
	Substeps    []Substep   `koanf:"substeps"`
}

// Rubric is the validated, indexed hierarchy. Construct via New.
type Rubric struct {
	steps []Step

	stepIndex     map[int]*Step
	substepIndex  map[int]*Substep
	behaviorIndex map[int]*Behavior
}

// New validates the step hierarchy, sorts every layer by its order field,
// and builds the lookup indexes. Any structural violation fails with
// ErrInvalid.
func New(steps []Step) (*Rubric, error) {
	r := &Rubric{
		steps:         make([]Step, len(steps)),
		stepIndex:     make(map[int]*Step),
		substepIndex:  make(map[int]*Substep),
		behaviorIndex: make(map[int]*Behavior),
	}
	copy(r.steps, steps)

	sort.SliceStable(r.steps, func(i, j int) bool { return r.steps[i].Order < r.steps[j].Order })

	stepOrders := make(map[int]bool)
	for si := range r.steps {
		step := &r.steps[si]
		if _, dup := r.stepIndex[step.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate step id %d", ErrInvalid, step.ID)
		}
		if stepOrders[step.Order] {
			return nil, fmt.Errorf("%w: duplicate step order %d", ErrInvalid, step.Order)
		}
		stepOrders[step.Order] = true
		r.stepIndex[step.ID] = step

		sort.SliceStable(step.Substeps, func(i, j int) bool { return step.Substeps[i].Order < step.Substeps[j].Order })
		subOrders := make(map[int]bool)
		for bi := range step.Substeps {
			sub := &step.Substeps[bi]
			if sub.StepID != step.ID {
				return nil, fmt.Errorf("%w: substep %d claims step %d but belongs to step %d", ErrInvalid, sub.ID, sub.StepID, step.ID)
			}
			if _, dup := r.substepIndex[sub.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate substep id %d", ErrInvalid, sub.ID)
			}
			if subOrders[sub.Order] {
				return nil, fmt.Errorf("%w: duplicate substep order %d in step %d", ErrInvalid, sub.Order, step.ID)
			}
			subOrders[sub.Order] = true
			r.substepIndex[sub.ID] = sub

			sort.SliceStable(sub.Behaviors, func(i, j int) bool { return sub.Behaviors[i].Order < sub.Behaviors[j].Order })
			for vi := range sub.Behaviors {
				b := &sub.Behaviors[vi]
				if b.SubstepID != sub.ID {
					return nil, fmt.Errorf("%w: behavior %d claims substep %d but belongs to substep %d", ErrInvalid, b.ID, b.SubstepID, sub.ID)
				}
				if b.Level < MinLevel || b.Level > MaxLevel {
					return nil, fmt.Errorf("%w: behavior %d has proficiency level %d", ErrInvalid, b.ID, b.Level)
				}
				if _, dup := r.behaviorIndex[b.ID]; dup {
					return nil, fmt.Errorf("%w: duplicate behavior id %d", ErrInvalid, b.ID)
				}
				r.behaviorIndex[b.ID] = b
			}
		}
	}
	return r, nil
}

// Steps returns the ordered step sequence.
func (r *Rubric) Steps() []Step {
	return r.steps
}

// Step looks up a step by id.
func (r *Rubric) Step(id int) (*Step, bool) {
	s, ok := r.stepIndex[id]
	return s, ok
}

// Substep looks up a substep by id.
func (r *Rubric) Substep(id int) (*Substep, bool) {
	s, ok := r.substepIndex[id]
	return s, ok
}

// Behavior looks up a behavior by id.
func (r *Rubric) Behavior(id int) (*Behavior, bool) {
	b, ok := r.behaviorIndex[id]
	return b, ok
}

// BehaviorCount returns the number of behaviors across the whole rubric.
func (r *Rubric) BehaviorCount() int {
	return len(r.behaviorIndex)
}
