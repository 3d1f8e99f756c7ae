package repository

import (
	"time"

	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithClock overrides the time source used for stamps and file names.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLatest shares a latest-snapshot index with other components.
func WithLatest(idx *LatestIndex) Option {
	return func(s *FileStore) {
		if idx != nil {
			s.latest = idx
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}
