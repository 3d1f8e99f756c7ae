package service

import (
	"time"

	"github.com/grimaarkan/speedruntracker/internal/adapters/publish"
	"github.com/grimaarkan/speedruntracker/internal/adapters/repository"
	"github.com/grimaarkan/speedruntracker/internal/domain/aggregate"
	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGames replaces the tracked game profiles.
func WithGames(games ...catalog.GameProfile) Option {
	return func(s *Service) {
		if len(games) > 0 {
			s.games = games
		}
	}
}

// WithFetcher overrides the leaderboard client used for one game.
func WithFetcher(slug string, f aggregate.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetchers[slug] = f
		}
	}
}

// WithStore replaces the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithExportDir sets the directory of the default file store.
func WithExportDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.exportDir = dir
		}
	}
}

// WithPublisher replaces the remote publisher.
func WithPublisher(p publish.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithRepository records the remote owner and name shown in export listings.
func WithRepository(owner, name string) Option {
	return func(s *Service) {
		s.repoOwner = owner
		s.repoName = name
	}
}

// WithKeepExports sets how many snapshot files survive pruning.
func WithKeepExports(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.keepExports = n
		}
	}
}

// WithExportInterval sets the scheduler sleep after a cycle.
func WithExportInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.exportInterval = d
		}
	}
}

// WithRecoveryInterval sets the scheduler sleep after a failed cycle.
func WithRecoveryInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.recoveryInterval = d
		}
	}
}

// WithCategoryDelay sets the pause between category requests.
func WithCategoryDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.categoryDelay = d
		}
	}
}

// WithRequestTimeout bounds each leaderboard request of the default clients.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithSpeedrunBaseURL points the default clients at another API root.
func WithSpeedrunBaseURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.speedrunBaseURL = u
		}
	}
}

// WithAutoExport controls whether Start launches the export loop.
func WithAutoExport(enabled bool) Option {
	return func(s *Service) { s.autoExport = enabled }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
