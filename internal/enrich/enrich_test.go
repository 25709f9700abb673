package enrich

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/disco/internal/domain"
	"github.com/MrSnakeDoc/disco/internal/logger"
)

const releasesJSON = `{"releases":[
	{"id":"r1","title":"Autobahn","date":"1974-11-01",
	 "artist-credit":[{"name":"Kraftwerk","artist":{"name":"Kraftwerk"}}],
	 "release-group":{"title":"Autobahn","primary-type":"Album"},
	 "label-info":[{"label":{"name":"Philips"}}]},
	{"id":"r2","title":"Kometenmelodie","date":"",
	 "artist-credit":[{"name":"","artist":{"name":"Kraftwerk"}}],
	 "release-group":{"title":"Kometenmelodie","primary-type":"Single"}}
]}`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type servers struct {
	svc *Service

	mu         sync.Mutex
	mbQueries  []string
	userAgents []string
}

func (s *servers) record(r *http.Request, mb bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userAgents = append(s.userAgents, r.UserAgent())
	if mb {
		s.mbQueries = append(s.mbQueries, r.URL.Query().Get("query"))
	}
}

// newServers starts a fake MusicBrainz and a fake cover art host. Only
// release r1 has a cover.
func newServers(t *testing.T, mb http.HandlerFunc) *servers {
	t.Helper()
	s := &servers{}
	cover := pngBytes(t, 400, 200)

	art := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r, false)
		switch r.URL.Path {
		case "/release/r1/front":
			if r.Method == http.MethodHead {
				w.Header().Set("Location", "/images/r1.png")
				w.WriteHeader(http.StatusTemporaryRedirect)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(cover)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(art.Close)

	if mb == nil {
		mb = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, releasesJSON)
		}
	}
	mbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r, true)
		mb(w, r)
	}))
	t.Cleanup(mbSrv.Close)

	s.svc = NewService(
		NewMusicBrainz(MusicBrainzConfig{BaseURL: mbSrv.URL, UserAgent: "DiscoTest/1.0"}),
		NewCovers(CoversConfig{BaseURL: art.URL, UserAgent: "DiscoTest/1.0"}),
		logger.NewNop(),
	)
	return s
}

func TestSearchParsesReleases(t *testing.T) {
	s := newServers(t, nil)

	albums := s.svc.Search(context.Background(), "kraftwerk", 5, false)
	require.Len(t, albums, 2)

	a := albums[0]
	assert.Equal(t, "r1", a.ReleaseID)
	assert.Equal(t, "Kraftwerk", a.ArtistName)
	assert.Equal(t, "Autobahn", a.AlbumName)
	assert.Equal(t, 1974, a.Year)
	assert.Equal(t, "Philips", a.Label)
	assert.Equal(t, domain.FormatLP, a.Format)

	b := albums[1]
	assert.Equal(t, "Kraftwerk", b.ArtistName, "falls back to the credited artist name")
	assert.Zero(t, b.Year)
	assert.Equal(t, domain.Format7Single, b.Format)

	for _, ua := range s.userAgents {
		assert.Equal(t, "DiscoTest/1.0", ua)
	}
}

func TestSearchWithoutConfirmedCoverArt(t *testing.T) {
	s := newServers(t, nil)

	albums := s.svc.Search(context.Background(), "kraftwerk", 5, true)
	require.Len(t, albums, 2)

	assert.True(t, albums[0].HasCoverArt)
	assert.True(t, strings.HasSuffix(albums[0].CoverArtURL, "/release/r1/front"))

	assert.False(t, albums[1].HasCoverArt)
	assert.Empty(t, albums[1].CoverArtURL)
	assert.Empty(t, albums[1].CoverArt)
}

func TestSearchIncludeArtEmbedsThumbnail(t *testing.T) {
	s := newServers(t, nil)

	albums := s.svc.Search(context.Background(), "kraftwerk", 5, true)
	require.NotEmpty(t, albums[0].CoverArt)
	require.True(t, strings.HasPrefix(albums[0].CoverArt, "data:image/jpeg;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(albums[0].CoverArt, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)

	plain := s.svc.Search(context.Background(), "kraftwerk", 5, false)
	assert.Empty(t, plain[0].CoverArt)
}

func TestSearchUpstreamFailureYieldsEmpty(t *testing.T) {
	s := newServers(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	albums := s.svc.Search(context.Background(), "kraftwerk", 5, false)
	assert.NotNil(t, albums)
	assert.Empty(t, albums)
}

func TestFieldedSearches(t *testing.T) {
	s := newServers(t, nil)
	ctx := context.Background()

	s.svc.SearchArtistAlbum(ctx, "Kraftwerk", `Ralf "und" Florian`, 3, false)
	s.svc.SearchByArtist(ctx, "Neu!", 3, false)
	s.svc.SearchByAlbum(ctx, "Zuckerzeit", 3, false)

	assert.Equal(t, []string{
		`artist:"Kraftwerk" AND release:"Ralf \"und\" Florian"`,
		`artist:"Neu!"`,
		`release:"Zuckerzeit"`,
	}, s.mbQueries)
}

func TestReleaseNotFound(t *testing.T) {
	s := newServers(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := s.svc.Release(context.Background(), "missing", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReleaseProbesCover(t *testing.T) {
	s := newServers(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/release/r1", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"r1","title":"Autobahn","date":"1974","artist-credit":[{"name":"Kraftwerk"}]}`)
	})

	a, err := s.svc.Release(context.Background(), "r1", false)
	require.NoError(t, err)
	assert.True(t, a.HasCoverArt)
	assert.Equal(t, 1974, a.Year)
}

func TestSearchCoversRetriesWithFirstWord(t *testing.T) {
	s := newServers(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "Kraftwerk" {
			_, _ = io.WriteString(w, releasesJSON)
			return
		}
		_, _ = io.WriteString(w, `{"releases":[]}`)
	})

	results := s.svc.SearchCovers(context.Background(), "Kraftwerk Autobahnn", 4)
	require.Len(t, results, 1)
	assert.Equal(t, "Autobahn by Kraftwerk", results[0].Title)
	assert.Equal(t, []string{"Kraftwerk Autobahnn", "Kraftwerk"}, s.mbQueries)
}

func TestThumbnail(t *testing.T) {
	big := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 300, 600))
	out := Thumbnail(big)
	require.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
	raw, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/jpeg;base64,"))
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	small := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 50, 40))
	raw, _ = base64.StdEncoding.DecodeString(strings.TrimPrefix(Thumbnail(small), "data:image/jpeg;base64,"))
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width, "never enlarged")

	for _, bad := range []string{"not a data url", "data:image/png;base64,!!!", "data:image/png;base64,AAAA"} {
		assert.Equal(t, bad, Thumbnail(bad), "undecodable input is returned unchanged")
	}
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without touching its pixels.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := bytes.Clone(data)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestThumbnailRejectsOversizedImages(t *testing.T) {
	huge := withDeclaredSize(t, pngBytes(t, 4, 4), 50000, 50000)
	cfg, err := png.DecodeConfig(bytes.NewReader(huge))
	require.NoError(t, err)
	require.Equal(t, 50000, cfg.Width)

	in := "data:image/png;base64," + base64.StdEncoding.EncodeToString(huge)
	_, err = thumbnail(in, ThumbnailSize, ThumbnailSize)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Equal(t, in, Thumbnail(in), "oversized input falls back to the original data url")

	wide := withDeclaredSize(t, pngBytes(t, 4, 4), MaxImageSide+1, 10)
	_, err = thumbnail("data:image/png;base64,"+base64.StdEncoding.EncodeToString(wide), ThumbnailSize, ThumbnailSize)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestDownloadRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html></html>")
	}))
	t.Cleanup(srv.Close)

	c := NewCovers(CoversConfig{})
	_, err := c.Download(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = c.Download(context.Background(), "ftp://example.com/a.jpg")
	assert.Error(t, err)
}

func TestFitInside(t *testing.T) {
	tests := []struct{ w, h, wantW, wantH int }{
		{400, 200, 200, 100},
		{200, 400, 100, 200},
		{1000, 1000, 200, 200},
		{100, 50, 100, 50},
		{2000, 1, 200, 1},
	}
	for _, tt := range tests {
		w, h := fitInside(tt.w, tt.h, 200, 200)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitInside(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}
