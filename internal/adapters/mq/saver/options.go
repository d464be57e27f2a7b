package saver

import (
	"time"

	"github.com/anja8577/salescoachreplitapp-sub001/pkg/logger"
)

// Option applies a configuration option to the Saver.
type Option func(*Saver)

// WithQueueSize bounds the save work channel.
func WithQueueSize(size int) Option {
	return func(s *Saver) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkers sets the number of writer goroutines.
func WithWorkers(count int) Option {
	return func(s *Saver) {
		if count > 0 {
			s.workers = count
		}
	}
}

// WithRetry sets the retry budget per write.
func WithRetry(max int, delay time.Duration) Option {
	return func(s *Saver) {
		if max >= 0 {
			s.retryMax = max
		}
		if delay > 0 {
			s.retryDelay = delay
		}
	}
}

// WithLogger sets a custom logger for the saver.
func WithLogger(l logger.Logger) Option {
	return func(s *Saver) {
		if l != nil {
			s.logger = l
		}
	}
}
