package session

import "errors"

// Sentinel kinds for session errors.
var (
	ErrUnknownBehavior = errors.New("behavior not in rubric")
	ErrUnknownStep     = errors.New("step not in rubric")
	ErrInvalidLevel    = errors.New("invalid override level")
)
