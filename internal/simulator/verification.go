package simulator

import (
	"context"
	"fmt"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/rubric"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/session"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/logger"
)

// verifySnapshot replays the plan through a local aggregator over the same
// rubric and checks that the service-reported snapshot matches the
// independently derived scores.
func verifySnapshot(ctx context.Context, r *rubric.Rubric, plan Plan, got session.Snapshot) error {
	agg := session.New(got.AssessmentID, r)
	for _, op := range plan.Toggles {
		if _, err := agg.ToggleBehavior(ctx, op.BehaviorID, op.Checked); err != nil {
			return fmt.Errorf("local toggle replay failed: %w", err)
		}
	}
	for stepID, level := range plan.Overrides {
		if err := agg.SetStepOverride(ctx, stepID, level); err != nil {
			return fmt.Errorf("local override replay failed: %w", err)
		}
	}

	want, err := agg.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("local snapshot failed: %w", err)
	}

	if got.TotalScore != want.TotalScore {
		return fmt.Errorf("total score mismatch: service=%d local=%d", got.TotalScore, want.TotalScore)
	}
	if got.CheckedCount != want.CheckedCount {
		return fmt.Errorf("checked count mismatch: service=%d local=%d", got.CheckedCount, want.CheckedCount)
	}
	if got.Overall != want.Overall {
		return fmt.Errorf("overall mismatch: service=%q local=%q", got.Overall.Label, want.Overall.Label)
	}
	if len(got.Steps) != len(want.Steps) {
		return fmt.Errorf("step count mismatch: service=%d local=%d", len(got.Steps), len(want.Steps))
	}
	for i := range want.Steps {
		g, w := got.Steps[i], want.Steps[i]
		if g.ID != w.ID || g.Score != w.Score || g.Label != w.Label || g.Overridden != w.Overridden {
			return fmt.Errorf("step %d mismatch: service=%s/%d local=%s/%d", w.ID, g.Label, g.Score, w.Label, w.Score)
		}
	}

	logger.Get().Debug(ctx, "snapshot verified",
		logger.String("assessmentID", got.AssessmentID),
		logger.Int("totalScore", got.TotalScore),
		logger.String("overall", got.Overall.Label))
	return nil
}
