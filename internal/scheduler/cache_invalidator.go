package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/disco/internal/logger"
)

// Invalidator is anything holding data that goes stale.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheInvalidator periodically drops the row cache so edits made directly in
// the spreadsheet show up without a restart.
type CacheInvalidator struct {
	target        Invalidator
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewCacheInvalidator creates a new cache invalidator. manualTrigger may be nil.
func NewCacheInvalidator(
	target Invalidator,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CacheInvalidator {
	return &CacheInvalidator{
		target:        target,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic invalidation. It returns immediately.
func (ci *CacheInvalidator) Start(ctx context.Context) error {
	ticker := time.NewTicker(ci.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ci.run(ctx, "scheduled")
			case <-ci.manualTrigger:
				ci.logger.Info("manual cache invalidation triggered")
				ci.run(ctx, "manual")
			case <-ci.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the invalidator. It is safe to call more than once.
func (ci *CacheInvalidator) Stop() {
	ci.stopOnce.Do(func() { close(ci.stopCh) })
}

func (ci *CacheInvalidator) run(ctx context.Context, reason string) {
	if err := ci.target.Invalidate(ctx); err != nil {
		ci.logger.Error("cache invalidation failed",
			logger.String("reason", reason),
			logger.Error(err))
		return
	}
	ci.logger.Debug("cache invalidated", logger.String("reason", reason))
}
