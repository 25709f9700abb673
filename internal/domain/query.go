package domain

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortOrder is the direction of a listing sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortKeys lists the fields a listing may be ordered by.
var SortKeys = []string{
	"artistName", "albumName", "year", "price", "genre",
	"owner", "status", "format", "createdAt", "updatedAt",
}

// QueryFilter selects, orders and pages a listing.
type QueryFilter struct {
	Page      int
	Limit     int
	Artist    string
	Genre     string
	Owner     string
	Status    Status
	Search    string
	SortBy    string
	SortOrder SortOrder
}

// Pagination describes the page returned by Query.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one slice of a filtered listing.
type Page struct {
	Records    []Record   `json:"records"`
	Pagination Pagination `json:"pagination"`
}

// ParseQueryFilter reads a filter from query-string values.
// Page and limit are clamped, never rejected; unknown sort keys, directions
// and statuses are reported as a *ValidationError.
func ParseQueryFilter(v url.Values) (QueryFilter, error) {
	f := QueryFilter{
		Page:      atoiOr(v.Get("page"), DefaultPage),
		Limit:     atoiOr(v.Get("limit"), DefaultLimit),
		Artist:    strings.TrimSpace(v.Get("artist")),
		Genre:     strings.TrimSpace(v.Get("genre")),
		Owner:     strings.TrimSpace(v.Get("owner")),
		Status:    Status(strings.TrimSpace(v.Get("status"))),
		Search:    strings.TrimSpace(v.Get("search")),
		SortBy:    strings.TrimSpace(v.Get("sortBy")),
		SortOrder: SortOrder(strings.ToLower(strings.TrimSpace(v.Get("sortOrder")))),
	}
	f.Clamp()

	verr := &ValidationError{}
	if f.SortBy != "" && !validSortKey(f.SortBy) {
		verr.Add("sortBy", "sortBy must be one of "+strings.Join(SortKeys, ", "))
	}
	if f.SortOrder != SortAsc && f.SortOrder != SortDesc {
		verr.Add("sortOrder", "sortOrder must be asc or desc")
	}
	if f.Status != "" && !f.Status.Valid() {
		verr.Add("status", "unknown status "+strconv.Quote(string(f.Status)))
	}
	return f, verr.OrNil()
}

// Clamp forces page and limit into their accepted ranges and fills defaults.
func (f *QueryFilter) Clamp() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	switch {
	case f.Limit == 0:
		f.Limit = DefaultLimit
	case f.Limit < 1:
		f.Limit = 1
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	if f.SortOrder == "" {
		f.SortOrder = SortAsc
	}
}

// Query filters, sorts and pages records. The input slice is not modified.
func Query(records []Record, f QueryFilter) Page {
	f.Clamp()

	matched := make([]Record, 0, len(records))
	for _, r := range records {
		if f.matches(r) {
			matched = append(matched, r)
		}
	}

	if f.SortBy != "" {
		less := lessFunc(f.SortBy)
		desc := f.SortOrder == SortDesc
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return less(matched[j], matched[i])
			}
			return less(matched[i], matched[j])
		})
	}

	total := len(matched)
	start, end := total, total
	if f.Page-1 <= total/f.Limit {
		start = min((f.Page-1)*f.Limit, total)
		end = min(start+f.Limit, total)
	}

	return Page{
		Records: matched[start:end],
		Pagination: Pagination{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: (total + f.Limit - 1) / f.Limit,
		},
	}
}

func (f QueryFilter) matches(r Record) bool {
	if f.Artist != "" && !containsFold(r.ArtistName, f.Artist) {
		return false
	}
	if f.Genre != "" && !containsFold(r.Genre, f.Genre) {
		return false
	}
	if f.Owner != "" && !containsFold(r.Owner, f.Owner) {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Search != "" {
		haystack := strings.Join([]string{r.ArtistName, r.AlbumName, r.Genre, r.Owner, r.Notes}, " ")
		if !containsFold(haystack, f.Search) {
			return false
		}
	}
	return true
}

func lessFunc(key string) func(a, b Record) bool {
	switch key {
	case "year":
		return func(a, b Record) bool { return a.Year < b.Year }
	case "price":
		return func(a, b Record) bool { return a.Price < b.Price }
	}
	field := stringField(key)
	return func(a, b Record) bool {
		return strings.ToLower(field(a)) < strings.ToLower(field(b))
	}
}

func stringField(key string) func(Record) string {
	switch key {
	case "albumName":
		return func(r Record) string { return r.AlbumName }
	case "genre":
		return func(r Record) string { return r.Genre }
	case "owner":
		return func(r Record) string { return r.Owner }
	case "status":
		return func(r Record) string { return string(r.Status) }
	case "format":
		return func(r Record) string { return string(r.Format) }
	case "createdAt":
		return func(r Record) string { return r.CreatedAt }
	case "updatedAt":
		return func(r Record) string { return r.UpdatedAt }
	default:
		return func(r Record) string { return r.ArtistName }
	}
}

func validSortKey(k string) bool {
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func atoiOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}
