// Package scoring computes proficiency scores and classifications from a
// rubric and the set of behaviors a coach has checked. Every function is
// pure and deterministic; session state lives elsewhere.
package scoring

import (
	"fmt"
	"sort"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/rubric"
)

// Classification ranks. Rank 0 is the neutral "nothing observed" case; ranks
// 1..4 align with behavior proficiency levels.
const (
	RankNotAssessed = 0
	RankLearner     = 1
	RankQualified   = 2
	RankExperienced = 3
	RankMaster      = 4
)

// Average-band cutoffs shared by substep and overall classification.
// Bounds are closed from below: an average of exactly 2.5 lands in the
// upper band.
const (
	expertBand     = 3.5
	proficientBand = 2.5
	developingBand = 1.5
)

// LabelNotAssessed is returned whenever nothing in scope was checked.
const LabelNotAssessed = "Not Assessed"

// substepLabels is the per-substep scale, indexed by rank.
var substepLabels = [...]string{LabelNotAssessed, "Beginner", "Developing", "Proficient", "Expert"}

// stepLabels is the per-step and overall scale, indexed by rank.
var stepLabels = [...]string{LabelNotAssessed, "Learner", "Qualified", "Experienced", "Master"}

// Classification is a human-readable label with its severity rank.
type Classification struct {
	Label string `json:"label"`
	Rank  int    `json:"rank"`
}

// Set is a set of checked behavior IDs.
type Set map[int]struct{}

// NewSet builds a Set from ids.
func NewSet(ids ...int) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s Set) Add(id int) { s[id] = struct{}{} }

// Delete removes id.
func (s Set) Delete(id int) { delete(s, id) }

// Len returns the set size.
func (s Set) Len() int { return len(s) }

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// IDs returns the members in ascending order.
func (s Set) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ValidateScope rejects checked IDs that do not exist in the rubric.
func ValidateScope(r *rubric.Rubric, checked Set) error {
	for id := range checked {
		if _, ok := r.Behavior(id); !ok {
			return fmt.Errorf("%w: checked behavior %d not in rubric", ErrConfiguration, id)
		}
	}
	return nil
}

func checkLevel(b rubric.Behavior) error {
	if b.Level < rubric.MinLevel || b.Level > rubric.MaxLevel {
		return fmt.Errorf("%w: behavior %d has proficiency level %d", ErrConfiguration, b.ID, b.Level)
	}
	return nil
}

// SubstepScore sums the proficiency levels of the substep's checked
// behaviors. Unchecked behaviors contribute 0.
func SubstepScore(sub *rubric.Substep, checked Set) (int, error) {
	total := 0
	for _, b := range sub.Behaviors {
		if err := checkLevel(b); err != nil {
			return 0, err
		}
		if checked.Has(b.ID) {
			total += b.Level
		}
	}
	return total, nil
}

// SubstepClassification labels a substep by the average level of its checked
// behaviors. The label depends only on how well the checked behaviors score
// on average, not on how many behaviors the substep defines.
func SubstepClassification(sub *rubric.Substep, checked Set) (Classification, error) {
	score, err := SubstepScore(sub, checked)
	if err != nil {
		return Classification{}, err
	}
	count := 0
	for _, b := range sub.Behaviors {
		if checked.Has(b.ID) {
			count++
		}
	}
	if count == 0 {
		return Classification{Label: LabelNotAssessed, Rank: RankNotAssessed}, nil
	}
	rank := averageRank(float64(score) / float64(count))
	return Classification{Label: substepLabels[rank], Rank: rank}, nil
}

// StepScore sums the substep scores of the step.
func StepScore(step *rubric.Step, checked Set) (int, error) {
	total := 0
	for i := range step.Substeps {
		s, err := SubstepScore(&step.Substeps[i], checked)
		if err != nil {
			return 0, err
		}
		total += s
	}
	return total, nil
}

// StepClassification labels a step from its raw total score. A manual
// override level 1..4 wins over any computation; 0 means automatic.
//
// Automatic classification deliberately differs from the substep rule: the
// raw total is compared against cumulative level-count maxima built from the
// rubric structure (independent of what was checked), or, where the step
// carries hand-tuned Thresholds, inclusively against those three cutoffs in
// order Master, Experienced, Qualified.
func StepClassification(step *rubric.Step, checked Set, override int) (Classification, error) {
	if override < 0 || override > rubric.MaxLevel {
		return Classification{}, fmt.Errorf("%w: step %d override level %d", ErrConfiguration, step.ID, override)
	}
	if override > 0 {
		return Classification{Label: stepLabels[override], Rank: override}, nil
	}

	score, err := StepScore(step, checked)
	if err != nil {
		return Classification{}, err
	}
	if score == 0 {
		return Classification{Label: LabelNotAssessed, Rank: RankNotAssessed}, nil
	}

	if t := step.Thresholds; t != nil {
		switch {
		case score >= t.Master:
			return Classification{Label: stepLabels[RankMaster], Rank: RankMaster}, nil
		case score >= t.Experienced:
			return Classification{Label: stepLabels[RankExperienced], Rank: RankExperienced}, nil
		case score >= t.Qualified:
			return Classification{Label: stepLabels[RankQualified], Rank: RankQualified}, nil
		default:
			return Classification{Label: stepLabels[RankLearner], Rank: RankLearner}, nil
		}
	}

	var counts [rubric.MaxLevel + 1]int
	for i := range step.Substeps {
		for _, b := range step.Substeps[i].Behaviors {
			counts[b.Level]++
		}
	}
	max1 := counts[1]
	max2 := max1 + counts[2]*2
	max3 := max2 + counts[3]*3

	// Strict > against cumulative maxima; a score exactly at a maximum
	// stays in the lower band.
	switch {
	case score > max3:
		return Classification{Label: stepLabels[RankMaster], Rank: RankMaster}, nil
	case score > max2:
		return Classification{Label: stepLabels[RankExperienced], Rank: RankExperienced}, nil
	case score > max1:
		return Classification{Label: stepLabels[RankQualified], Rank: RankQualified}, nil
	default:
		return Classification{Label: stepLabels[RankLearner], Rank: RankLearner}, nil
	}
}

// OverallClassification aggregates the whole rubric. Policy: total score
// divided by the number of CHECKED behaviors, against the same average bands
// as substeps, labeled on the step scale. Zero checked behaviors means the
// session was not assessed at all.
func OverallClassification(r *rubric.Rubric, checked Set, overrides map[int]int) (Classification, error) {
	if err := ValidateScope(r, checked); err != nil {
		return Classification{}, err
	}
	for stepID, level := range overrides {
		if _, ok := r.Step(stepID); !ok {
			return Classification{}, fmt.Errorf("%w: override for unknown step %d", ErrConfiguration, stepID)
		}
		if level < 0 || level > rubric.MaxLevel {
			return Classification{}, fmt.Errorf("%w: step %d override level %d", ErrConfiguration, stepID, level)
		}
	}

	total := 0
	steps := r.Steps()
	for i := range steps {
		s, err := StepScore(&steps[i], checked)
		if err != nil {
			return Classification{}, err
		}
		total += s
	}
	if checked.Len() == 0 {
		return Classification{Label: LabelNotAssessed, Rank: RankNotAssessed}, nil
	}
	rank := averageRank(float64(total) / float64(checked.Len()))
	return Classification{Label: stepLabels[rank], Rank: rank}, nil
}

// averageRank maps an average level to a rank 1..4 with closed lower bounds.
func averageRank(avg float64) int {
	switch {
	case avg >= expertBand:
		return 4
	case avg >= proficientBand:
		return 3
	case avg >= developingBand:
		return 2
	default:
		return 1
	}
}
