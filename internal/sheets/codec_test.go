package sheets

import (
	"testing"

	"github.com/MrSnakeDoc/disco/internal/domain"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"25", 25},
		{"$25.00", 25},
		{"€1,299.5", 1299.5},
		{"£ 12.5", 12.5},
		{"¥300", 300},
		{"", 0},
		{"n/a", 0},
		{"-4", 0},
	}

	for _, tt := range tests {
		if got := ParsePrice(tt.raw); got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestDecodeRow(t *testing.T) {
	r := DecodeRow([]string{"Kraftwerk", "Autobahn", "1974", "Cassette", "Electronic", "$25.00", "Ann"})

	if r.ID != "Kraftwerk-Autobahn-1974" {
		t.Errorf("ID = %q", r.ID)
	}
	if r.Format != domain.FormatLP {
		t.Errorf("Format = %q, want LP fallback", r.Format)
	}
	if r.Price != 25 {
		t.Errorf("Price = %v", r.Price)
	}
	if r.Status != domain.StatusOwned {
		t.Errorf("Status = %q, want Owned default", r.Status)
	}
	if r.Notes != "" || r.CoverArt != "" {
		t.Errorf("missing trailing cells should be empty: %+v", r)
	}
}

func TestDecodeRowYear(t *testing.T) {
	tests := map[string]int{"1974": 1974, "1974.0": 1974, "": 0, "soon": 0}
	for raw, want := range tests {
		if got := DecodeRow([]string{"A", "B", raw}).Year; got != want {
			t.Errorf("year %q = %d, want %d", raw, got, want)
		}
	}
}

func TestDecodeRowsSkipsHeaderAndBlanks(t *testing.T) {
	rows := [][]string{
		{"Artist", "Album"},
		{"Kraftwerk", "Autobahn", "1974"},
		{},
		{"", "  "},
		{"Can", "Tago Mago", "1971"},
	}

	got := DecodeRows(rows)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].ArtistName != "Can" {
		t.Errorf("second record = %+v", got[1])
	}

	if n := len(DecodeRows([][]string{{"Artist"}})); n != 0 {
		t.Errorf("header only should decode to nothing, got %d", n)
	}
}

func TestFindRow(t *testing.T) {
	rows := [][]string{
		{"Artist", "Album"},
		{"Kraftwerk", "Autobahn", "1974"},
		{},
		{"Can", "Tago Mago", "1971"},
		{"Can", "Tago Mago", "1971", "EP"},
	}

	r, n, ok := FindRow(rows, "Can-Tago Mago-1971")
	if !ok {
		t.Fatal("row not found")
	}
	if n != 4 {
		t.Errorf("row number = %d, want 4", n)
	}
	if r.Format != domain.FormatLP {
		t.Errorf("duplicate ids should resolve to the first row, got format %q", r.Format)
	}

	if _, _, ok := FindRow(rows, "Faust-IV-1973"); ok {
		t.Error("unexpected match")
	}
}

func TestEncodeRowRoundTrip(t *testing.T) {
	in := domain.Record{
		ArtistName: "Neu!",
		AlbumName:  "Neu! 75",
		Year:       1975,
		Format:     domain.Format12LP,
		Genre:      "Krautrock",
		Price:      18.499,
		Owner:      "Ann",
		Status:     domain.StatusLoaned,
		Notes:      "first press",
		CreatedAt:  "2024-01-01T00:00:00Z",
		UpdatedAt:  "2024-01-02T00:00:00Z",
		CoverArt:   "data:image/jpeg;base64,AAAA",
	}

	row := EncodeRow(in)
	if len(row) != ColumnCount {
		t.Fatalf("row width = %d, want %d", len(row), ColumnCount)
	}
	if row[ColYear] != 1975 {
		t.Errorf("year cell = %#v, want int", row[ColYear])
	}
	if row[ColPrice] != 18.5 {
		t.Errorf("price cell = %#v, want 18.5", row[ColPrice])
	}
	if row[ColCoverArt] != in.CoverArt {
		t.Errorf("cover art must be the last column")
	}
}
