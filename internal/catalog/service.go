package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/disco/internal/domain"
	"github.com/MrSnakeDoc/disco/internal/logger"
	"github.com/MrSnakeDoc/disco/internal/sheets"
)

// RowSource yields the collection rows. *cache.Cache implements it.
type RowSource interface {
	// Rows may serve a cached snapshot.
	Rows(ctx context.Context) (sheets.Result, error)
	// Fresh always reads the backend.
	Fresh(ctx context.Context) (sheets.Result, error)
	Invalidate(ctx context.Context) error
}

// Field names a column Distinct can list.
type Field string

const (
	FieldArtists Field = "artists"
	FieldGenres  Field = "genres"
	FieldOwners  Field = "owners"
)

// Service implements the collection operations on top of the spreadsheet.
//
// Writes always locate their row with a fresh read. There is no locking
// between that read and the write: two concurrent mutations can still target
// a stale row position.
type Service struct {
	rows    RowSource
	backend sheets.Backend
	log     logger.Logger
	now     func() time.Time
}

// NewService creates a catalog service.
func NewService(rows RowSource, backend sheets.Backend, log logger.Logger) *Service {
	return &Service{
		rows:    rows,
		backend: backend,
		log:     log,
		now:     time.Now,
	}
}

// All returns every record in sheet order.
func (s *Service) All(ctx context.Context) ([]domain.Record, error) {
	res, err := s.rows.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	return sheets.DecodeRows(res.Rows), nil
}

// List returns one filtered, sorted page of the collection.
func (s *Service) List(ctx context.Context, f domain.QueryFilter) (domain.Page, error) {
	records, err := s.All(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Query(records, f), nil
}

// Get returns the first record whose derived id matches. The id may still be
// URL-encoded.
func (s *Service) Get(ctx context.Context, id string) (domain.Record, error) {
	res, err := s.rows.Rows(ctx)
	if err != nil {
		return domain.Record{}, fmt.Errorf("read collection: %w", err)
	}
	r, _, ok := sheets.FindRow(res.Rows, domain.DecodeID(id))
	if !ok {
		return domain.Record{}, domain.ErrNotFound
	}
	return r, nil
}

// Create validates the input and appends it as a new row.
func (s *Service) Create(ctx context.Context, in domain.RecordInput) (domain.Record, error) {
	in.Sanitize()
	if err := in.Validate(true, s.now()); err != nil {
		return domain.Record{}, err
	}

	var r domain.Record
	in.ApplyTo(&r)
	r.Touch(s.now())

	res, err := s.rows.Rows(ctx)
	if err != nil {
		return domain.Record{}, fmt.Errorf("locate collection: %w", err)
	}
	if err := s.backend.Append(ctx, res.Locator, sheets.EncodeRow(r)); err != nil {
		return domain.Record{}, fmt.Errorf("append record: %w", err)
	}

	s.log.Info("record created", logger.String("id", r.ID), logger.String("locator", res.Locator))
	s.invalidate(ctx)
	return r, nil
}

// Update merges the provided fields onto the stored record and rewrites its row.
//
// The returned record carries the id derived from the merged fields: editing
// artist, album or year changes the id and the old one stops resolving.
// An update that changes nothing leaves the row, and its UpdatedAt, untouched.
func (s *Service) Update(ctx context.Context, id string, in domain.RecordInput) (domain.Record, error) {
	in.Sanitize()
	if err := in.Validate(false, s.now()); err != nil {
		return domain.Record{}, err
	}

	res, err := s.rows.Fresh(ctx)
	if err != nil {
		return domain.Record{}, fmt.Errorf("read collection: %w", err)
	}
	current, rowNum, ok := sheets.FindRow(res.Rows, domain.DecodeID(id))
	if !ok {
		return domain.Record{}, domain.ErrNotFound
	}

	merged := current
	in.ApplyTo(&merged)
	if sameContent(current, merged) {
		return current, nil
	}
	merged.Touch(s.now())

	rng := sheets.RowRange(res.Locator, rowNum)
	if err := s.backend.Update(ctx, rng, sheets.EncodeRow(merged)); err != nil {
		return domain.Record{}, fmt.Errorf("update record: %w", err)
	}

	s.log.Info("record updated",
		logger.String("id", current.ID),
		logger.String("new_id", merged.ID),
		logger.String("range", rng))
	s.invalidate(ctx)
	return merged, nil
}

// Delete removes the record's row from the sheet.
func (s *Service) Delete(ctx context.Context, id string) error {
	res, err := s.rows.Fresh(ctx)
	if err != nil {
		return fmt.Errorf("read collection: %w", err)
	}
	r, rowNum, ok := sheets.FindRow(res.Rows, domain.DecodeID(id))
	if !ok {
		return domain.ErrNotFound
	}

	sheet := sheets.SheetName(res.Locator)
	if err := s.backend.DeleteRow(ctx, sheet, rowNum-1); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	s.log.Info("record deleted", logger.String("id", r.ID), logger.Int("row", rowNum))
	s.invalidate(ctx)
	return nil
}

// Stats summarizes the whole collection.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	records, err := s.All(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(records), nil
}

// Distinct lists the non-empty values of a field, sorted case-insensitively.
func (s *Service) Distinct(ctx context.Context, field Field) ([]string, error) {
	var pick func(domain.Record) string
	switch field {
	case FieldArtists:
		pick = func(r domain.Record) string { return r.ArtistName }
	case FieldGenres:
		pick = func(r domain.Record) string { return r.Genre }
	case FieldOwners:
		pick = func(r domain.Record) string { return r.Owner }
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}

	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		v := pick(r)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out, nil
}

// Invalidate drops cached rows.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.rows.Invalidate(ctx)
}

// invalidate runs after a successful write. Failures are only logged.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.rows.Invalidate(ctx); err != nil {
		s.log.Warn("cache invalidation after write failed", logger.Error(err))
	}
}

func sameContent(a, b domain.Record) bool {
	a.CreatedAt, a.UpdatedAt = "", ""
	b.CreatedAt, b.UpdatedAt = "", ""
	return a == b
}
