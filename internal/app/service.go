// Package service wires the export pipeline and implements the dependencies
// required by the HTTP API and the scheduler.
package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grimaarkan/speedruntracker/internal/adapters/publish"
	"github.com/grimaarkan/speedruntracker/internal/adapters/repository"
	"github.com/grimaarkan/speedruntracker/internal/adapters/scheduler"
	"github.com/grimaarkan/speedruntracker/internal/adapters/speedrun"
	"github.com/grimaarkan/speedruntracker/internal/domain/aggregate"
	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/internal/domain/model"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
	"github.com/grimaarkan/speedruntracker/pkg/metrics"
)


// GameResult is the outcome of exporting one game.
type GameResult struct {
	Game      string `json:"game"`
	Success   bool   `json:"success"`
	Path      string `json:"path,omitempty"`
	Published bool   `json:"published"`
	Error     string `json:"error,omitempty"`
}

// CycleReport summarizes one full export cycle.
type CycleReport struct {
	ID       string        `json:"cycle_id"`
	Success  bool          `json:"success"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"-"`
	Results  []GameResult  `json:"results"`
	Pruned   []string      `json:"pruned,omitempty"`
}

// Service implements the export pipeline for every tracked game.
type Service struct {
	mu sync.RWMutex

	// Core components
	games      []catalog.GameProfile
	fetchers   map[string]aggregate.Fetcher
	aggregator *aggregate.Aggregator
	store      repository.Store
	publisher  publish.Publisher
	scheduler  *scheduler.Scheduler

	// Configuration
	exportDir        string
	keepExports      int
	exportInterval   time.Duration
	recoveryInterval time.Duration
	categoryDelay    time.Duration
	requestTimeout   time.Duration
	speedrunBaseURL  string
	repoOwner        string
	repoName         string
	autoExport       bool

	// State
	started   bool
	lastCycle *CycleReport

	// Logging
	logger logger.Logger
}

// New constructs a Service. Components not supplied through options get
// defaults built from the remaining options.
func New(opts ...Option) *Service {
	s := &Service{
		games:            catalog.Games(),
		fetchers:         make(map[string]aggregate.Fetcher),
		exportDir:        "exports",
		keepExports:      10,
		exportInterval:   scheduler.DefaultInterval,
		recoveryInterval: scheduler.DefaultRecoveryInterval,
		categoryDelay:    aggregate.DefaultDelay,
		requestTimeout:   10 * time.Second,
		speedrunBaseURL:  speedrun.DefaultBaseURL,
		autoExport:       true,
		logger:           logger.Get().Named("service"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	for _, g := range s.games {
		if _, ok := s.fetchers[g.Slug]; ok {
			continue
		}
		s.fetchers[g.Slug] = speedrun.NewClient(
			speedrun.WithBaseURL(s.speedrunBaseURL),
			speedrun.WithTimeout(s.requestTimeout),
			speedrun.WithDateLayout(g.DateLayout),
			speedrun.WithDateSource(g.DateSource),
			speedrun.WithGameLabel(g.Slug),
		)
	}
	if s.store == nil {
		s.store = repository.NewFileStore(s.exportDir)
	}
	if s.publisher == nil {
		s.publisher = publish.NewGitHub()
	}
	s.aggregator = aggregate.New(aggregate.WithDelay(s.categoryDelay))
	s.scheduler = scheduler.New(s,
		scheduler.WithInterval(s.exportInterval),
		scheduler.WithRecoveryInterval(s.recoveryInterval),
	)
	return s
}

// Start launches the background export loop when auto export is enabled.
// The loop is started at most once per Service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true

	if !s.autoExport {
		s.logger.Info(ctx, "auto export disabled")
		return nil
	}
	s.scheduler.Start(ctx)
	s.logger.Info(ctx, "tracker service started",
		logger.Int("games", len(s.games)),
		logger.Bool("publish_enabled", s.publisher.Enabled()),
		logger.Duration("interval", s.exportInterval))
	return nil
}

// Stop waits for the export loop to finish its current cycle.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	// Not under s.mu: a running cycle records its report under the lock.
	if err := s.scheduler.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	s.logger.Info(ctx, "tracker service stopped")
	return nil
}

// Games returns the tracked profiles.
func (s *Service) Games() []catalog.GameProfile {
	out := make([]catalog.GameProfile, len(s.games))
	copy(out, s.games)
	return out
}

// Game returns the profile for slug.
func (s *Service) Game(slug string) (catalog.GameProfile, error) {
	return catalog.Lookup(s.games, slug)
}

// Record fetches the world record of one category.
func (s *Service) Record(ctx context.Context, slug, key string) (model.Record, error) {
	g, err := s.Game(slug)
	if err != nil {
		return model.Record{}, err
	}
	def, err := g.Registry.Lookup(key)
	if err != nil {
		return model.Record{}, err
	}
	return s.fetchers[g.Slug].FetchCategoryRecord(ctx, g.GameID, def)
}

// PrimaryRecord fetches the record of the game's first category.
func (s *Service) PrimaryRecord(ctx context.Context, slug string) (model.Record, error) {
	g, err := s.Game(slug)
	if err != nil {
		return model.Record{}, err
	}
	def, ok := g.Registry.Primary()
	if !ok {
		return model.Record{}, fmt.Errorf("%w: %s has no categories", catalog.ErrUnknownCategory, slug)
	}
	return s.fetchers[g.Slug].FetchCategoryRecord(ctx, g.GameID, def)
}

// Categories fetches every category of a game. Failed ones are nil.
func (s *Service) Categories(ctx context.Context, slug string) (*model.CategorySet, error) {
	g, err := s.Game(slug)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, g), nil
}

func (s *Service) collect(ctx context.Context, g catalog.GameProfile) *model.CategorySet {
	set := s.aggregator.FetchAllCategories(ctx, s.fetchers[g.Slug], g.GameID, g.Registry)
	if failed := set.Failed(); len(failed) > 0 {
		s.logger.Warn(ctx, "some categories could not be fetched",
			logger.String("game", g.Slug),
			logger.Any("failed", failed))
	}
	return set
}

// ExportSnapshot writes a fresh compact snapshot for a game.
func (s *Service) ExportSnapshot(ctx context.Context, slug string) (string, error) {
	g, err := s.Game(slug)
	if err != nil {
		return "", err
	}
	return s.store.WriteSnapshot(ctx, s.collect(ctx, g), g)
}

// ExportReadable writes a fresh human-readable export for a game.
func (s *Service) ExportReadable(ctx context.Context, slug string) (string, error) {
	g, err := s.Game(slug)
	if err != nil {
		return "", err
	}
	return s.store.WriteReadable(ctx, s.collect(ctx, g), g)
}

// LatestOrExport returns the latest snapshot of a game, exporting a
// readable one when none is available.
func (s *Service) LatestOrExport(ctx context.Context, slug string) (string, error) {
	if _, err := s.Game(slug); err != nil {
		return "", err
	}
	if path, ok := s.store.Latest(slug); ok {
		return path, nil
	}
	return s.ExportReadable(ctx, slug)
}

// ExportAll writes compact snapshots for every game without publishing.
func (s *Service) ExportAll(ctx context.Context) []GameResult {
	results := make([]GameResult, 0, len(s.games))
	for _, g := range s.games {
		results = append(results, s.exportGame(ctx, g, false))
	}
	return results
}

// PruneExports removes all but the newest keep_exports snapshot files.
func (s *Service) PruneExports(ctx context.Context) ([]string, error) {
	return s.store.Prune(ctx, s.keepExports)
}

// ExportToRemote writes a snapshot of one game and publishes it.
func (s *Service) ExportToRemote(ctx context.Context, slug string) (GameResult, error) {
	g, err := s.Game(slug)
	if err != nil {
		return GameResult{}, err
	}
	res := s.exportGame(ctx, g, false)
	if !res.Success {
		return res, nil
	}
	res.Published = s.publisher.Publish(ctx, res.Path, g.RemotePath)
	res.Success = res.Published
	if !res.Published {
		res.Error = "publish failed"
	}
	return res, nil
}

// RunCycle exports and publishes every game in isolation, then prunes old
// snapshots.
func (s *Service) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{ID: uuid.NewString(), Started: time.Now()}
	log := s.logger.With(logger.String("cycle_id", report.ID))
	log.Info(ctx, "export cycle beginning", logger.Int("games", len(s.games)))

	publishing := s.publisher.Enabled()
	report.Success = true
	for _, g := range s.games {
		res := s.exportGame(ctx, g, publishing)
		if !res.Success {
			report.Success = false
		}
		report.Results = append(report.Results, res)
	}

	pruned, err := s.PruneExports(ctx)
	if err != nil {
		log.Error(ctx, "pruning old exports failed", logger.Error(err))
	}
	report.Pruned = pruned

	report.Duration = time.Since(report.Started)
	outcome := metrics.OutcomeSuccess
	if !report.Success {
		outcome = metrics.OutcomeFailure
	}
	metrics.RecordCycle(outcome, report.Duration)
	log.Info(ctx, "export cycle finished",
		logger.Bool("success", report.Success),
		logger.Int("pruned", len(pruned)),
		logger.Duration("duration", report.Duration))

	s.mu.Lock()
	s.lastCycle = &report
	s.mu.Unlock()
	return report
}

// Cycle implements scheduler.Cycler. Per-game failures are contained and
// reported by RunCycle, so the loop keeps its regular interval; only a panic
// escaping RunCycle makes the scheduler back off.
func (s *Service) Cycle(ctx context.Context) error {
	s.RunCycle(ctx)
	return nil
}

// exportGame runs aggregate, write and optionally publish for one game.
// Panics are contained so other games still run.
func (s *Service) exportGame(ctx context.Context, g catalog.GameProfile, publishing bool) (res GameResult) {
	res.Game = g.Name
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("service", "panic")
			s.logger.Error(ctx, "game export panicked",
				logger.String("game", g.Slug),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
			res.Success = false
			res.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	path, err := s.store.WriteSnapshot(ctx, s.collect(ctx, g), g)
	if err != nil {
		metrics.RecordErrorByComponent("service", "snapshot_error")
		s.logger.Error(ctx, "snapshot failed", logger.String("game", g.Slug), logger.Error(err))
		res.Error = err.Error()
		return res
	}
	res.Path = path
	res.Success = true

	if publishing {
		res.Published = s.publisher.Publish(ctx, path, g.RemotePath)
		if !res.Published {
			res.Success = false
			res.Error = "publish failed"
		}
	}
	return res
}

// ListExports returns snapshot files, newest first.
func (s *Service) ListExports(ctx context.Context) ([]repository.ExportFile, error) {
	return s.store.List(ctx)
}

// ResolveExport maps an export file name to its local path.
func (s *Service) ResolveExport(name string) (string, error) {
	return s.store.Resolve(name)
}

// Repository returns the remote owner and name.
func (s *Service) Repository() (owner, name string) {
	return s.repoOwner, s.repoName
}

// PublishEnabled reports whether publishing is configured.
func (s *Service) PublishEnabled() bool { return s.publisher.Enabled() }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"games":             len(s.games),
		"publish_enabled":   s.publisher.Enabled(),
		"scheduler_running": s.scheduler.Running(),
		"cycles":            s.scheduler.Cycles(),
		"keep_exports":      s.keepExports,
		"export_interval":   s.exportInterval.String(),
	}
	if s.lastCycle != nil {
		stats["last_cycle_id"] = s.lastCycle.ID
		stats["last_cycle_success"] = s.lastCycle.Success
		stats["last_cycle_started"] = s.lastCycle.Started
	}
	latest := make(map[string]string, len(s.games))
	for _, g := range s.games {
		if path, ok := s.store.Latest(g.Slug); ok {
			latest[g.Slug] = path
		}
	}
	stats["latest"] = latest
	return stats
}
