package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithIDFunc overrides assessment id generation, mainly for tests.
func WithIDFunc(fn func() string) Option {
	return func(s *MemStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithNowFunc overrides the clock, mainly for tests.
func WithNowFunc(fn func() time.Time) Option {
	return func(s *MemStore) {
		if fn != nil {
			s.now = fn
		}
	}
}
