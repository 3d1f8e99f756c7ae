package scheduler

import (
	"time"

	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithInterval sets the sleep after a completed cycle.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRecoveryInterval sets the sleep after a cycle failed as a whole.
func WithRecoveryInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.recovery = d
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
