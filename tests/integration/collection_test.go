package integration

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/disco/internal/cache"
	"github.com/MrSnakeDoc/disco/internal/catalog"
	"github.com/MrSnakeDoc/disco/internal/domain"
	"github.com/MrSnakeDoc/disco/internal/logger"
	"github.com/MrSnakeDoc/disco/internal/sheets"
	"github.com/MrSnakeDoc/disco/internal/sheets/sheetstest"
	redisstore "github.com/MrSnakeDoc/disco/internal/store/redis"
)

var header = []string{"Artist", "Album", "Year", "Format", "Genre", "Price", "Owner", "Status", "Notes", "Created", "Updated", "Cover Art"}

func collectionRows() [][]string {
	return [][]string{
		header,
		{"Can", "Tago Mago", "1971", "LP", "Krautrock", "40", "ann", "Owned"},
		{"Kraftwerk", "Autobahn", "1974", "LP", "Electronic", "25", "ann", "Wanted"},
		{"Kraftwerk", "Trans-Europe Express", "1977", "LP", "Electronic", "30", "bob", "Owned", "gatefold"},
		{"Neu!", "Neu!", "1972", "LP", "Krautrock", "35", "bob", "Loaned"},
	}
}

func ptr[T any](v T) *T { return &v }

type stack struct {
	backend *sheetstest.Backend
	cache   *cache.Cache
	catalog *catalog.Service
	redis   *miniredis.Miniredis
}

// newStack wires the spreadsheet fake, the resolver, a Redis-backed cache
// and the catalog the same way the server does.
func newStack(t *testing.T, tab string, rows [][]string) *stack {
	t.Helper()
	nop := logger.NewNop()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	b := sheetstest.New().SetTab(tab, rows)
	resolver := sheets.NewResolver(b, sheets.DefaultCandidates("Vinyl_Collection"), nop)
	c := cache.New(resolver, redisstore.NewStore(client), cache.Options{
		Enabled:  true,
		TTL:      time.Minute,
		Interval: time.Hour,
	}, nop)

	return &stack{
		backend: b,
		cache:   c,
		catalog: catalog.NewService(c, b, nop),
		redis:   mr,
	}
}

// TestQueryScenarios runs listing queries against the full read path
func TestQueryScenarios(t *testing.T) {
	s := newStack(t, "Vinyl_Collection", collectionRows())

	tests := []struct {
		name        string
		filter      domain.QueryFilter
		expectedTop string // Expected first record id
		expectedN   int    // Expected total matches
		description string
	}{
		{
			name:        "artist filter",
			filter:      domain.QueryFilter{Artist: "kraft"},
			expectedTop: "Kraftwerk-Autobahn-1974",
			expectedN:   2,
			description: "Partial, case-insensitive artist match keeps sheet order",
		},
		{
			name:        "genre sorted by year desc",
			filter:      domain.QueryFilter{Genre: "kraut", SortBy: "year", SortOrder: domain.SortDesc},
			expectedTop: "Neu!-Neu!-1972",
			expectedN:   2,
			description: "Newest krautrock record first",
		},
		{
			name:        "search in notes",
			filter:      domain.QueryFilter{Search: "GATEFOLD"},
			expectedTop: "Kraftwerk-Trans-Europe Express-1977",
			expectedN:   1,
			description: "Free-text search covers the notes column",
		},
		{
			name:        "owner and status",
			filter:      domain.QueryFilter{Owner: "bob", Status: domain.StatusLoaned},
			expectedTop: "Neu!-Neu!-1972",
			expectedN:   1,
			description: "Filters combine with AND",
		},
		{
			name:        "cheapest first",
			filter:      domain.QueryFilter{SortBy: "price"},
			expectedTop: "Kraftwerk-Autobahn-1974",
			expectedN:   4,
			description: "Sort direction defaults to ascending",
		},
		{
			name:        "no match",
			filter:      domain.QueryFilter{Artist: "Faust"},
			expectedN:   0,
			description: "An empty page is not an error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.catalog.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("%s: List() error = %v", tt.description, err)
			}
			if page.Pagination.Total != tt.expectedN {
				t.Errorf("%s: total = %d, want %d", tt.description, page.Pagination.Total, tt.expectedN)
			}
			if tt.expectedN == 0 {
				if len(page.Records) != 0 {
					t.Errorf("%s: got %d records, want none", tt.description, len(page.Records))
				}
				return
			}
			if len(page.Records) == 0 {
				t.Fatalf("%s: no records returned", tt.description)
			}
			if got := page.Records[0].ID; got != tt.expectedTop {
				t.Errorf("%s: top = %q, want %q", tt.description, got, tt.expectedTop)
			}
		})
	}
}

// TestPagination checks page slicing and the page count
func TestPagination(t *testing.T) {
	s := newStack(t, "Vinyl_Collection", collectionRows())

	page, err := s.catalog.List(context.Background(), domain.QueryFilter{Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Records) != 1 {
		t.Errorf("records on page 2 = %d, want 1", len(page.Records))
	}
	if page.Pagination.TotalPages != 2 {
		t.Errorf("totalPages = %d, want 2", page.Pagination.TotalPages)
	}
	if page.Records[0].ID != "Neu!-Neu!-1972" {
		t.Errorf("page 2 record = %q", page.Records[0].ID)
	}
}

// TestSpreadsheetEditsAfterInvalidation simulates an edit made directly in
// the spreadsheet: it stays invisible until the cache is invalidated.
func TestSpreadsheetEditsAfterInvalidation(t *testing.T) {
	s := newStack(t, "Vinyl_Collection", collectionRows())
	ctx := context.Background()

	before, err := s.catalog.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(s.redis.Keys()) == 0 {
		t.Fatal("expected a snapshot in redis after the first read")
	}

	edited := append(collectionRows(), []string{"Faust", "Faust IV", "1973", "LP", "Krautrock", "28", "ann", "Wanted"})
	s.backend.SetTab("Vinyl_Collection", edited)

	cached, err := s.catalog.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(cached) != len(before) {
		t.Errorf("cached read saw the edit: %d records, want %d", len(cached), len(before))
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	after, err := s.catalog.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(after) != len(before)+1 {
		t.Errorf("records after invalidation = %d, want %d", len(after), len(before)+1)
	}
}

// TestWritesThroughRedisCache creates, updates and deletes a record and
// checks every read afterwards reflects the write.
func TestWritesThroughRedisCache(t *testing.T) {
	s := newStack(t, "Vinyl_Collection", collectionRows())
	ctx := context.Background()

	created, err := s.catalog.Create(ctx, domain.RecordInput{
		ArtistName: ptr("Harmonia"),
		AlbumName:  ptr("Musik von Harmonia"),
		Year:       ptr(1974),
		Genre:      ptr("Krautrock"),
		Owner:      ptr("ann"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != "Harmonia-Musik von Harmonia-1974" {
		t.Errorf("created id = %q", created.ID)
	}
	if _, err := s.catalog.Get(ctx, created.ID); err != nil {
		t.Errorf("Get() after create error = %v", err)
	}

	updated, err := s.catalog.Update(ctx, created.ID, domain.RecordInput{
		AlbumName: ptr("Deluxe"),
		Year:      ptr(1975),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != "Harmonia-Deluxe-1975" {
		t.Errorf("updated id = %q", updated.ID)
	}
	if _, err := s.catalog.Get(ctx, created.ID); err == nil {
		t.Error("old id still resolves after update")
	}

	if err := s.catalog.Delete(ctx, updated.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	all, err := s.catalog.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != len(collectionRows())-1 {
		t.Errorf("records after delete = %d, want %d", len(all), len(collectionRows())-1)
	}
}

// TestRenamedTab checks the resolver finds a tab whose underscores became spaces
func TestRenamedTab(t *testing.T) {
	s := newStack(t, "Vinyl Collection", collectionRows())
	ctx := context.Background()

	all, err := s.catalog.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("records = %d, want 4", len(all))
	}
	if got := s.cache.Status(ctx).Locator; got != "'Vinyl Collection'!A:L" {
		t.Errorf("locator = %q, want %q", got, "'Vinyl Collection'!A:L")
	}
}
