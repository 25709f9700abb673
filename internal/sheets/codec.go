package sheets

import (
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/disco/internal/domain"
)

// Column positions of a catalog row.
const (
	ColArtist = iota
	ColAlbum
	ColYear
	ColFormat
	ColGenre
	ColPrice
	ColOwner
	ColStatus
	ColNotes
	ColCreatedAt
	ColUpdatedAt
	ColCoverArt

	// ColumnCount is the width of a full row (A through L).
	ColumnCount
)

// HeaderRow is written above the data when a tab is created by hand.
var HeaderRow = []string{
	"Artist", "Album", "Year", "Format", "Genre", "Price",
	"Owner", "Status", "Notes", "Created", "Updated", "Cover Art",
}

var priceReplacer = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "", " ", "")

// DecodeRow turns one row of cell text into a record.
// Missing trailing cells read as empty; unparsable numbers read as zero.
func DecodeRow(row []string) domain.Record {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	r := domain.Record{
		ArtistName: cell(ColArtist),
		AlbumName:  cell(ColAlbum),
		Year:       parseYear(cell(ColYear)),
		Format:     domain.ParseFormat(cell(ColFormat)),
		Genre:      cell(ColGenre),
		Price:      ParsePrice(cell(ColPrice)),
		Owner:      cell(ColOwner),
		Status:     domain.Status(cell(ColStatus)),
		Notes:      cell(ColNotes),
		CreatedAt:  cell(ColCreatedAt),
		UpdatedAt:  cell(ColUpdatedAt),
		CoverArt:   cell(ColCoverArt),
	}
	if r.Status == "" {
		r.Status = domain.DefaultStatus
	}
	r.RefreshID()
	return r
}

// DecodeRows decodes every data row, skipping the header and rows with
// neither artist nor album.
func DecodeRows(rows [][]string) []domain.Record {
	if len(rows) <= 1 {
		return []domain.Record{}
	}
	out := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		out = append(out, DecodeRow(row))
	}
	return out
}

// FindRow returns the decoded record whose id matches and its 1-based sheet
// row number. The header is row 1, so the first data row is 2.
func FindRow(rows [][]string, id string) (domain.Record, int, bool) {
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		r := DecodeRow(rows[i])
		if r.ID == id {
			return r, i + 1, true
		}
	}
	return domain.Record{}, 0, false
}

// EncodeRow lays a record out in column order. Year and price are written as
// numbers so the sheet can sort and sum them.
func EncodeRow(r domain.Record) []any {
	row := make([]any, ColumnCount)
	row[ColArtist] = r.ArtistName
	row[ColAlbum] = r.AlbumName
	row[ColYear] = r.Year
	row[ColFormat] = string(r.Format)
	row[ColGenre] = r.Genre
	row[ColPrice] = domain.RoundPrice(r.Price)
	row[ColOwner] = r.Owner
	row[ColStatus] = string(r.Status)
	row[ColNotes] = r.Notes
	row[ColCreatedAt] = r.CreatedAt
	row[ColUpdatedAt] = r.UpdatedAt
	row[ColCoverArt] = r.CoverArt
	return row
}

// ParsePrice reads a price cell, ignoring currency symbols and thousands separators.
// Example: "$1,299.50" -> 1299.5
func ParsePrice(raw string) float64 {
	p, err := strconv.ParseFloat(priceReplacer.Replace(raw), 64)
	if err != nil || p < 0 {
		return 0
	}
	return domain.RoundPrice(p)
}

func parseYear(raw string) int {
	if raw == "" {
		return 0
	}
	if y, err := strconv.Atoi(raw); err == nil {
		return y
	}
	// Numeric cells can come back as "1974.0".
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

func blank(row []string) bool {
	for _, c := range row[:min(len(row), ColAlbum+1)] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
