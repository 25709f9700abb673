package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/disco/internal/logger"
	"github.com/MrSnakeDoc/disco/internal/sheets"
)

// RowsLoader reads the collection rows.
type RowsLoader interface {
	Rows(ctx context.Context) (sheets.Result, error)
}

// Warm reads the collection once so the first request finds a resolved
// locator and a filled cache. Failures are logged, never fatal: the next
// request retries the resolution anyway.
func Warm(ctx context.Context, loader RowsLoader, log logger.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := loader.Rows(ctx)
	if err != nil {
		log.Warn("cache warm-up failed", logger.Error(err))
		return
	}

	log.Info("cache warmed",
		logger.String("locator", res.Locator),
		logger.String("status", res.Status.String()),
		logger.Int("rows", max(len(res.Rows)-1, 0)),
		logger.Duration("elapsed", time.Since(start)))
}
