package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/disco/internal/logger"
	"github.com/MrSnakeDoc/disco/internal/sheets"
)

type countingTarget struct {
	calls atomic.Int32
	err   error
}

func (c *countingTarget) Invalidate(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCacheInvalidator_Periodic(t *testing.T) {
	target := &countingTarget{}
	ci := NewCacheInvalidator(target, logger.New("error", false), 10*time.Millisecond, nil)

	if err := ci.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer ci.Stop()

	waitFor(t, func() bool { return target.calls.Load() >= 2 })
}

func TestCacheInvalidator_ManualTrigger(t *testing.T) {
	target := &countingTarget{}
	trigger := make(chan struct{})
	ci := NewCacheInvalidator(target, logger.New("error", false), time.Hour, trigger)

	if err := ci.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer ci.Stop()

	trigger <- struct{}{}
	waitFor(t, func() bool { return target.calls.Load() == 1 })
}

func TestCacheInvalidator_ErrorsDoNotStopTheLoop(t *testing.T) {
	target := &countingTarget{err: errors.New("redis down")}
	ci := NewCacheInvalidator(target, logger.New("error", false), 10*time.Millisecond, nil)

	if err := ci.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer ci.Stop()

	waitFor(t, func() bool { return target.calls.Load() >= 3 })
}

func TestCacheInvalidator_StopIsIdempotent(t *testing.T) {
	ci := NewCacheInvalidator(&countingTarget{}, logger.NewNop(), time.Hour, nil)
	if err := ci.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	ci.Stop()
	ci.Stop()
}

type stubLoader struct {
	res sheets.Result
	err error
	ctx context.Context
}

func (s *stubLoader) Rows(ctx context.Context) (sheets.Result, error) {
	s.ctx = ctx
	return s.res, s.err
}

func TestWarm(t *testing.T) {
	l := &stubLoader{res: sheets.Result{Status: sheets.StatusFound, Locator: "A:L", Rows: [][]string{{"h"}, {"a"}}}}
	Warm(context.Background(), l, logger.NewNop(), time.Second)

	if l.ctx == nil {
		t.Fatal("loader was not called")
	}
	if _, ok := l.ctx.Deadline(); !ok {
		t.Error("warm-up should run under a deadline")
	}

	// Failures are swallowed.
	Warm(context.Background(), &stubLoader{err: errors.New("boom")}, logger.NewNop(), time.Second)
}
