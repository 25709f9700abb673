package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/disco/internal/domain"
	"github.com/MrSnakeDoc/disco/internal/utils"
)

const (
	DefaultMusicBrainzURL = "https://musicbrainz.org/ws/2"
	DefaultUserAgent      = "DiscoVinylApp/1.0"
	DefaultTimeout        = 10 * time.Second

	// MaxLimit caps how many releases one search asks for.
	MaxLimit = 25
)

// ErrUpstream is wrapped when the metadata service answers with an error status.
var ErrUpstream = errors.New("metadata service error")

// Album is a release normalized for the catalog.
type Album struct {
	ReleaseID   string        `json:"releaseId"`
	ArtistName  string        `json:"artistName"`
	AlbumName   string        `json:"albumName"`
	Year        int           `json:"year"`
	Label       string        `json:"label,omitempty"`
	Format      domain.Format `json:"format"`
	CoverArtURL string        `json:"coverArtUrl,omitempty"`
	HasCoverArt bool          `json:"hasCoverArt"`
	CoverArt    string        `json:"coverArt,omitempty"`
}

// release mirrors the fields read from a MusicBrainz release document.
type release struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	ArtistCredit []struct {
		Name   string `json:"name"`
		Artist struct {
			Name string `json:"name"`
		} `json:"artist"`
	} `json:"artist-credit"`
	ReleaseGroup struct {
		Title       string `json:"title"`
		PrimaryType string `json:"primary-type"`
	} `json:"release-group"`
	LabelInfo []struct {
		Label *struct {
			Name string `json:"name"`
		} `json:"label"`
	} `json:"label-info"`
}

type searchResponse struct {
	Releases []release `json:"releases"`
}

var leadingYear = regexp.MustCompile(`^(\d{4})`)

// MusicBrainzConfig configures the MusicBrainz client.
type MusicBrainzConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// MusicBrainz queries the MusicBrainz release search API.
type MusicBrainz struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewMusicBrainz creates a client. Zero config fields take their defaults.
func NewMusicBrainz(cfg MusicBrainzConfig) *MusicBrainz {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMusicBrainzURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &MusicBrainz{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Search runs a free-text (Lucene) release query.
func (m *MusicBrainz) Search(ctx context.Context, query string, limit int) ([]Album, error) {
	params := url.Values{
		"query": {query},
		"fmt":   {"json"},
		"limit": {strconv.Itoa(clampLimit(limit))},
	}

	var resp searchResponse
	if err := m.get(ctx, "/release", params, &resp); err != nil {
		return nil, err
	}

	albums := make([]Album, 0, len(resp.Releases))
	for _, r := range resp.Releases {
		albums = append(albums, parseRelease(r))
	}
	return albums, nil
}

// Release fetches one release by its MusicBrainz id.
func (m *MusicBrainz) Release(ctx context.Context, id string) (Album, error) {
	params := url.Values{
		"fmt": {"json"},
		"inc": {"artist-credits+labels+release-groups"},
	}

	var r release
	if err := m.get(ctx, "/release/"+url.PathEscape(id), params, &r); err != nil {
		return Album{}, err
	}
	return parseRelease(r), nil
}

func (m *MusicBrainz) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", m.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("musicbrainz request: %w", err)
	}
	defer utils.DrainClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode musicbrainz response: %w", err)
	}
	return nil
}

func parseRelease(r release) Album {
	a := Album{
		ReleaseID: r.ID,
		AlbumName: r.Title,
		Format:    formatFromType(r.ReleaseGroup.PrimaryType),
	}

	if len(r.ArtistCredit) > 0 {
		a.ArtistName = r.ArtistCredit[0].Name
		if a.ArtistName == "" {
			a.ArtistName = r.ArtistCredit[0].Artist.Name
		}
	}
	if a.ArtistName == "" {
		a.ArtistName = "Unknown Artist"
	}
	if a.AlbumName == "" {
		a.AlbumName = r.ReleaseGroup.Title
	}
	if a.AlbumName == "" {
		a.AlbumName = "Unknown Album"
	}

	if m := leadingYear.FindStringSubmatch(r.Date); m != nil {
		a.Year, _ = strconv.Atoi(m[1])
	}

	for _, li := range r.LabelInfo {
		if li.Label != nil && li.Label.Name != "" {
			a.Label = li.Label.Name
			break
		}
	}
	return a
}

// formatFromType guesses a physical format from a release-group primary type.
func formatFromType(primaryType string) domain.Format {
	switch strings.ToLower(primaryType) {
	case "single":
		return domain.Format7Single
	case "ep":
		return domain.FormatEP
	default:
		return domain.FormatLP
	}
}

// ArtistAlbumQuery builds a fielded query matching both artist and release title.
func ArtistAlbumQuery(artist, album string) string {
	return fmt.Sprintf(`artist:"%s" AND release:"%s"`, escapeTerm(artist), escapeTerm(album))
}

// ArtistQuery builds a fielded query on the artist name.
func ArtistQuery(artist string) string {
	return fmt.Sprintf(`artist:"%s"`, escapeTerm(artist))
}

// AlbumQuery builds a fielded query on the release title.
func AlbumQuery(album string) string {
	return fmt.Sprintf(`release:"%s"`, escapeTerm(album))
}

func escapeTerm(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(strings.TrimSpace(s))
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return 5
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
