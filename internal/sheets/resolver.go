package sheets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/disco/internal/logger"
)

// ErrNoData is wrapped when no candidate locator could be read.
var ErrNoData = errors.New("no readable range among candidates")

// ResultStatus tells what a resolution found.
type ResultStatus int

const (
	// StatusFound means Rows holds a header and at least one data row.
	StatusFound ResultStatus = iota + 1
	// StatusEmpty means a locator answered but held no data rows. Writes may
	// still append to it.
	StatusEmpty
)

func (s ResultStatus) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Result is the outcome of Resolve.
type Result struct {
	Status  ResultStatus
	Locator string
	Rows    [][]string
}

// Resolver finds which of several candidate locators holds the collection.
//
// The first locator that returns data is remembered and tried first on the
// next call. The preferred locator is only a hint: when it stops producing
// data the full list is scanned again.
type Resolver struct {
	backend    Backend
	candidates []string
	log        logger.Logger

	mu        sync.RWMutex
	preferred string
}

// NewResolver creates a resolver over an ordered candidate list.
func NewResolver(backend Backend, candidates []string, log logger.Logger) *Resolver {
	if len(candidates) == 0 {
		candidates = DefaultCandidates(DefaultSheet)
	}
	return &Resolver{
		backend:    backend,
		candidates: candidates,
		log:        log,
	}
}

// Resolve reads candidates in order until one holds data.
func (r *Resolver) Resolve(ctx context.Context) (Result, error) {
	var (
		firstEmpty string
		lastErr    error
	)

	for _, loc := range r.order() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		rows, err := r.backend.Get(ctx, loc)
		if err != nil {
			lastErr = err
			r.log.Debug("range candidate failed",
				logger.String("locator", loc),
				logger.Error(err),
			)
			continue
		}

		if len(rows) > 1 {
			r.setPreferred(loc)
			return Result{Status: StatusFound, Locator: loc, Rows: rows}, nil
		}

		if firstEmpty == "" {
			firstEmpty = loc
		}
	}

	// Nothing held data: the remembered locator is no longer a good guess.
	r.Reset()

	if firstEmpty != "" {
		return Result{Status: StatusEmpty, Locator: firstEmpty}, nil
	}
	if lastErr == nil {
		return Result{}, ErrNoData
	}
	return Result{}, fmt.Errorf("%w: %w", ErrNoData, lastErr)
}

// Preferred returns the remembered locator, or "" when none is known.
func (r *Resolver) Preferred() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.preferred
}

// Reset forgets the remembered locator.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.preferred = ""
	r.mu.Unlock()
}

// Candidates returns a copy of the candidate list.
func (r *Resolver) Candidates() []string {
	return append([]string(nil), r.candidates...)
}

func (r *Resolver) setPreferred(loc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.preferred != loc {
		r.log.Info("range resolved", logger.String("locator", loc))
	}
	r.preferred = loc
}

// order puts the preferred locator first, keeping the rest in configured order.
func (r *Resolver) order() []string {
	pref := r.Preferred()
	if pref == "" {
		return r.candidates
	}
	out := make([]string, 0, len(r.candidates)+1)
	out = append(out, pref)
	for _, c := range r.candidates {
		if c != pref {
			out = append(out, c)
		}
	}
	return out
}
