// Package scheduler runs the periodic export loop.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grimaarkan/speedruntracker/pkg/logger"
	"github.com/grimaarkan/speedruntracker/pkg/metrics"
)

// Default loop timing.
const (
	DefaultInterval         = 6 * time.Hour
	DefaultRecoveryInterval = 2 * time.Hour
)

// Cycler runs one export cycle. An error means the cycle failed as a whole;
// per-game failures are handled inside.
type Cycler interface {
	Cycle(ctx context.Context) error
}

// Scheduler invokes a Cycler forever: immediately, then after every interval.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	recovery time.Duration

	startOnce    sync.Once
	shutdownOnce sync.Once
	started      atomic.Bool
	cycles       atomic.Int64

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a scheduler with configuration options.
func New(c Cycler, opts ...Option) *Scheduler {
	s := &Scheduler{
		cycler:   c,
		interval: DefaultInterval,
		recovery: DefaultRecoveryInterval,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the loop in the background. Only the first call has an
// effect; it reports whether this call started the loop.
func (s *Scheduler) Start(ctx context.Context) bool {
	launched := false
	s.startOnce.Do(func() {
		launched = true
		s.started.Store(true)
		go s.run(ctx)
	})
	return launched
}

// Running reports whether the loop was started and has not exited.
func (s *Scheduler) Running() bool {
	if !s.started.Load() {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Cycles returns the number of cycles attempted so far.
func (s *Scheduler) Cycles() int64 { return s.cycles.Load() }

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	metrics.SetSchedulerRunning(true)
	defer metrics.SetSchedulerRunning(false)

	s.logger.Info(ctx, "export loop started",
		logger.Duration("interval", s.interval),
		logger.Duration("recovery_interval", s.recovery))

	for {
		wait := s.interval
		if err := s.runCycle(ctx); err != nil {
			s.logger.Error(ctx, "export cycle failed, backing off",
				logger.Error(err),
				logger.Duration("retry_in", s.recovery))
			wait = s.recovery
		}
		if !s.sleep(ctx, wait) {
			s.logger.Info(context.Background(), "export loop stopped")
			return
		}
	}
}

// runCycle converts a panic into an error so the loop survives it.
func (s *Scheduler) runCycle(ctx context.Context) (err error) {
	s.cycles.Add(1)
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("scheduler", "panic")
			s.logger.Error(ctx, "export cycle panicked", logger.String("stack", string(debug.Stack())))
			err = fmt.Errorf("export cycle panicked: %v", r)
		}
	}()
	return s.cycler.Cycle(ctx)
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-s.shutdown:
		return false
	case <-t.C:
		return true
	}
}

// Shutdown stops the loop after the running cycle, if any, completes.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
	if !s.started.Load() {
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
