package rubric

import "errors"

// Sentinel kinds for rubric errors.
var (
	ErrInvalid     = errors.New("invalid rubric")
	ErrUnavailable = errors.New("rubric unavailable")
)
