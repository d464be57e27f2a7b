package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("assessment not found")
	ErrUnavailable = errors.New("assessment store unavailable")
)
