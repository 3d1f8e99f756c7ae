// Package aggregate resolves every category of a game into a CategorySet.
package aggregate

import (
	"context"
	"time"

	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/internal/domain/model"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

// DefaultDelay keeps consecutive requests under informal upstream rate limits.
const DefaultDelay = 500 * time.Millisecond

// Fetcher resolves one category's record.
type Fetcher interface {
	FetchCategoryRecord(ctx context.Context, gameID string, def catalog.CategoryDefinition) (model.Record, error)
}

// Aggregator walks a registry one category at a time.
type Aggregator struct {
	delay  time.Duration
	logger logger.Logger
}

// New creates an aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		delay:  DefaultDelay,
		logger: logger.Get().Named("aggregate"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchAllCategories returns a set holding one entry per registry key.
// A failed category is stored as nil and never aborts the rest. If ctx is
// cancelled, the remaining keys are recorded as nil.
func (a *Aggregator) FetchAllCategories(ctx context.Context, f Fetcher, gameID string, reg *catalog.Registry) *model.CategorySet {
	defs := reg.Definitions()
	set := model.NewCategorySet(len(defs))

	for i, def := range defs {
		if i > 0 && !a.wait(ctx) {
			set.Set(def.Key, nil)
			continue
		}
		if ctx.Err() != nil {
			set.Set(def.Key, nil)
			continue
		}

		rec, err := f.FetchCategoryRecord(ctx, gameID, def)
		if err != nil {
			a.logger.Error(ctx, "category fetch failed",
				logger.String("game_id", gameID),
				logger.String("category", def.Key),
				logger.Error(err))
			set.Set(def.Key, nil)
			continue
		}
		set.Set(def.Key, &rec)
	}
	return set
}

// wait sleeps for the configured delay; false means ctx ended first.
func (a *Aggregator) wait(ctx context.Context) bool {
	if a.delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(a.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
