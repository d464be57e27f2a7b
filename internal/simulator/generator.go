package simulator

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/rubric"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	coachStyleDivisor  = 5
	flipFraction       = 8
	overrideChance     = 4
	noteChance         = 3
)

// Constants for coach observation styles: the probability that a given
// behavior gets checked during the session.
const (
	thoroughCheckRate = 0.85
	typicalCheckRate  = 0.55
	sparseCheckRate   = 0.25
	skepticCheckRate  = 0.10
	generousCheckRate = 0.95
)

// Constants for coach style cases.
const (
	caseThoroughCoach = 0
	caseTypicalCoach  = 1
	caseSparseCoach   = 2
	caseSkepticCoach  = 3
	caseGenerousCoach = 4
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max) using crypto/rand.
func getRandomInt(max int64) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return int(n.Int64())
}

// generatePlans scripts the requested number of coaching sessions against
// the built-in rubric.
func generatePlans(ctx context.Context, config *Config, stats *Stats) ([]Plan, error) {
	logger.Get().Info(ctx, "generating session plans", logger.Int("numSessions", config.NumSessions))

	r, err := rubric.NewSeedSource().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rubric: %w", err)
	}

	plans := make([]Plan, config.NumSessions)
	for i := range plans {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during plan generation: %w", ctx.Err())
		default:
			plans[i] = generateSinglePlan(i, r)
		}
	}

	stats.SessionsPlanned = len(plans)
	logger.Get().Info(ctx, "generated session plans successfully", logger.Int("count", len(plans)))
	return plans, nil
}

// generateSinglePlan scripts one session: a coach style picks which
// behaviors get checked, a fraction of toggles flip back to unchecked to
// exercise idempotence, and some sessions add overrides and notes.
func generateSinglePlan(index int, r *rubric.Rubric) Plan {
	checkRate := checkRateForStyle(getRandomInt(coachStyleDivisor))

	plan := Plan{
		Title:    "Simulated coaching call " + strconv.Itoa(index),
		Assessee: "rep-" + strconv.Itoa(index),
	}

	steps := r.Steps()
	for si := range steps {
		step := &steps[si]
		for _, sub := range step.Substeps {
			for _, b := range sub.Behaviors {
				if getRandomFloat() >= checkRate {
					continue
				}
				plan.Toggles = append(plan.Toggles, ToggleOp{BehaviorID: b.ID, Checked: true})
				// Occasionally flip a checked behavior back off.
				if getRandomInt(flipFraction) == 0 {
					plan.Toggles = append(plan.Toggles, ToggleOp{BehaviorID: b.ID, Checked: false})
				}
			}
		}
	}

	if getRandomInt(overrideChance) == 0 && len(steps) > 0 {
		step := steps[getRandomInt(int64(len(steps)))]
		plan.Overrides = map[int]int{step.ID: rubric.MinLevel + getRandomInt(rubric.MaxLevel)}
	}
	if getRandomInt(noteChance) == 0 {
		plan.Notes = map[string]string{
			"what_went_well": "Kept the conversation focused on customer outcomes.",
			"next_steps":     "Practice closing questions before the next call.",
		}
	}
	return plan
}

// checkRateForStyle maps a coach style case to its check probability.
func checkRateForStyle(style int) float64 {
	switch style {
	case caseThoroughCoach:
		return thoroughCheckRate
	case caseTypicalCoach:
		return typicalCheckRate
	case caseSparseCoach:
		return sparseCheckRate
	case caseSkepticCoach:
		return skepticCheckRate
	case caseGenerousCoach:
		return generousCheckRate
	default:
		return typicalCheckRate
	}
}
