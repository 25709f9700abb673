package domain

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Format is the physical media format of a record.
type Format string

const (
	FormatLP       Format = "LP"
	FormatEP       Format = "EP"
	Format7Single  Format = `7" Single`
	Format10Single Format = `10" Single`
	Format12Single Format = `12" Single`
	Format10EP     Format = `10" EP`
	Format12EP     Format = `12" EP`
	Format12LP     Format = `12" LP`
)

const (
	// DefaultFormat is stored whenever a format is missing or unknown.
	DefaultFormat = FormatLP

	// IdentitySeparator joins artist, album and year in a derived id.
	IdentitySeparator = "-"
)

// Formats lists every accepted format, in display order.
var Formats = []Format{
	FormatLP, FormatEP, Format7Single, Format10Single,
	Format12Single, Format10EP, Format12EP, Format12LP,
}

// ParseFormat maps a raw cell or request value onto a known format.
// Matching ignores case and surrounding spaces; anything unknown falls back to DefaultFormat.
func ParseFormat(raw string) Format {
	raw = strings.TrimSpace(raw)
	for _, f := range Formats {
		if strings.EqualFold(raw, string(f)) {
			return f
		}
	}
	return DefaultFormat
}

// Status is the ownership state of a record.
type Status string

const (
	StatusOwned      Status = "Owned"
	StatusWanted     Status = "Wanted"
	StatusBorrowed   Status = "Borrowed"
	StatusLoaned     Status = "Loaned"
	StatusRepurchase Status = "Re-purchase Necessary"
)

const DefaultStatus = StatusOwned

var Statuses = []Status{StatusOwned, StatusWanted, StatusBorrowed, StatusLoaned, StatusRepurchase}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Record is one entry of the collection.
//
// A record has no stored identifier: its ID is derived from artist, album and
// year every time the row is read. Two rows sharing those three values cannot
// be told apart and only the first one is reachable by ID.
type Record struct {
	// ─────────────────────────────
	// Identity (derived)
	// ─────────────────────────────

	// ID is DeriveID(ArtistName, AlbumName, Year).
	ID string `json:"id"`

	// ─────────────────────────────
	// Catalog fields
	// ─────────────────────────────

	ArtistName string  `json:"artistName"`
	AlbumName  string  `json:"albumName"`
	Year       int     `json:"year"`
	Format     Format  `json:"format"`
	Genre      string  `json:"genre"`
	Price      float64 `json:"price"`
	Owner      string  `json:"owner"`
	Status     Status  `json:"status"`

	// CoverArt is a data URL (data:image/jpeg;base64,...) or empty.
	CoverArt string `json:"coverArt,omitempty"`
	Notes    string `json:"notes,omitempty"`

	// ─────────────────────────────
	// Timestamps (RFC 3339, server-side)
	// ─────────────────────────────

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// DeriveID builds the identity of a record from the fields that make it unique.
// Example: ("Kraftwerk", "Autobahn", 1974) -> "Kraftwerk-Autobahn-1974"
func DeriveID(artist, album string, year int) string {
	return artist + IdentitySeparator + album + IdentitySeparator + strconv.Itoa(year)
}

// DecodeID undoes URL-encoding applied to an id travelling in a path segment.
// Ids that are not valid escapes are returned unchanged.
func DecodeID(id string) string {
	decoded, err := url.PathUnescape(id)
	if err != nil {
		return id
	}
	return decoded
}

// RefreshID recomputes r.ID from its identity fields.
func (r *Record) RefreshID() {
	r.ID = DeriveID(r.ArtistName, r.AlbumName, r.Year)
}

// Touch stamps UpdatedAt, and CreatedAt when it is still empty.
func (r *Record) Touch(now time.Time) {
	ts := now.UTC().Format(time.RFC3339)
	if r.CreatedAt == "" {
		r.CreatedAt = ts
	}
	r.UpdatedAt = ts
}
