package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrConfiguration marks a malformed rubric scope: a proficiency level
	// outside 1..4, a checked behavior unknown to the rubric, or an
	// override outside 0..4. Scoring aborts on it.
	ErrConfiguration = errors.New("scoring configuration error")
)
