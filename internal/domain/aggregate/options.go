package aggregate

import (
	"time"

	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithDelay sets the pause between consecutive category requests.
func WithDelay(d time.Duration) Option {
	return func(a *Aggregator) {
		if d >= 0 {
			a.delay = d
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
