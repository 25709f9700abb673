package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinYear        = 1900
	maxNameLength  = 255
	maxLabelLength = 100
	maxNotesLength = 1000
)

// RecordInput is the body of a create or update request.
// Nil fields are "not provided": an update leaves them untouched.
type RecordInput struct {
	ArtistName *string  `json:"artistName,omitempty"`
	AlbumName  *string  `json:"albumName,omitempty"`
	Year       *int     `json:"year,omitempty"`
	Format     *string  `json:"format,omitempty"`
	Genre      *string  `json:"genre,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Owner      *string  `json:"owner,omitempty"`
	Status     *string  `json:"status,omitempty"`
	CoverArt   *string  `json:"coverArt,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// Sanitize trims text fields and strips angle brackets, in place.
func (in *RecordInput) Sanitize() {
	for _, p := range []*string{in.ArtistName, in.AlbumName, in.Genre, in.Owner, in.Notes, in.Status, in.Format} {
		if p != nil {
			*p = sanitize(*p)
		}
	}
	if in.CoverArt != nil {
		*in.CoverArt = strings.TrimSpace(*in.CoverArt)
	}
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// Validate checks the input. With create set, artist and album are required.
// Unknown formats are not an error: they are stored as DefaultFormat.
func (in *RecordInput) Validate(create bool, now time.Time) error {
	verr := &ValidationError{}

	checkText := func(field string, v *string, required bool, max int) {
		switch {
		case v == nil:
			if required && create {
				verr.Add(field, field+" is required")
			}
		case required && *v == "":
			verr.Add(field, field+" is required")
		case utf8.RuneCountInString(*v) > max:
			verr.Add(field, field+" must be at most "+strconv.Itoa(max)+" characters")
		}
	}

	// Identity fields may be omitted on update but never blanked.
	checkText("artistName", in.ArtistName, true, maxNameLength)
	checkText("albumName", in.AlbumName, true, maxNameLength)
	checkText("genre", in.Genre, false, maxLabelLength)
	checkText("owner", in.Owner, false, maxLabelLength)
	checkText("notes", in.Notes, false, maxNotesLength)

	if in.Year != nil && *in.Year != 0 {
		maxYear := now.Year() + 1
		if *in.Year < MinYear || *in.Year > maxYear {
			verr.Add("year", "year must be between "+strconv.Itoa(MinYear)+" and "+strconv.Itoa(maxYear))
		}
	}

	if in.Price != nil && (*in.Price < 0 || math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0)) {
		verr.Add("price", "price must be a non-negative number")
	}

	if in.Status != nil && *in.Status != "" && !Status(*in.Status).Valid() {
		verr.Add("status", "status must be one of Owned, Wanted, Borrowed, Loaned, Re-purchase Necessary")
	}

	if in.CoverArt != nil && *in.CoverArt != "" && !strings.HasPrefix(*in.CoverArt, "data:image/") {
		verr.Add("coverArt", "coverArt must be an image data URL")
	}

	return verr.OrNil()
}

// ApplyTo merges the provided fields onto r and recomputes its id.
func (in *RecordInput) ApplyTo(r *Record) {
	if in.ArtistName != nil {
		r.ArtistName = *in.ArtistName
	}
	if in.AlbumName != nil {
		r.AlbumName = *in.AlbumName
	}
	if in.Year != nil {
		r.Year = *in.Year
	}
	if in.Format != nil {
		r.Format = ParseFormat(*in.Format)
	}
	if in.Genre != nil {
		r.Genre = *in.Genre
	}
	if in.Price != nil {
		r.Price = RoundPrice(*in.Price)
	}
	if in.Owner != nil {
		r.Owner = *in.Owner
	}
	if in.Status != nil && *in.Status != "" {
		r.Status = Status(*in.Status)
	}
	if in.CoverArt != nil {
		r.CoverArt = *in.CoverArt
	}
	if in.Notes != nil {
		r.Notes = *in.Notes
	}

	if r.Format == "" {
		r.Format = DefaultFormat
	}
	if r.Status == "" {
		r.Status = DefaultStatus
	}
	r.RefreshID()
}

// RoundPrice normalizes a price to two decimals.
func RoundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}
