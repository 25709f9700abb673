package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/disco/internal/catalog"
	"github.com/MrSnakeDoc/disco/internal/enrich"
	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
)

const defaultSearchLimit = 5

// SearchResults is the payload of every metadata search.
type SearchResults struct {
	Results []enrich.Album `json:"results"`
	Total   int            `json:"total"`
}

// Distinct lists the unique values of one collection column.
func Distinct(d deps.Deps, field catalog.Field) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := d.Catalog.Distinct(r.Context(), field)
		if err != nil {
			rs.Error(w, r, err, "Not found", "Failed to fetch "+string(field))
			return
		}
		OK(w, http.StatusOK, values)
	}
}

func MetadataSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := strings.TrimSpace(q.Get("query"))
		if query == "" {
			BadRequest(w, "Query parameter is required")
			return
		}
		albums := d.Enrich.Search(r.Context(), query, intParam(q.Get("limit"), defaultSearchLimit), boolParam(q.Get("includeArt")))
		OK(w, http.StatusOK, SearchResults{Results: albums, Total: len(albums)})
	}
}

func MetadataByArtist(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artist := strings.TrimSpace(chi.URLParam(r, "artist"))
		if artist == "" {
			BadRequest(w, "Artist is required")
			return
		}
		q := r.URL.Query()
		albums := d.Enrich.SearchByArtist(r.Context(), artist, intParam(q.Get("limit"), defaultSearchLimit), boolParam(q.Get("includeArt")))
		OK(w, http.StatusOK, SearchResults{Results: albums, Total: len(albums)})
	}
}

func MetadataByAlbum(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		album := strings.TrimSpace(q.Get("album"))
		if album == "" {
			BadRequest(w, "Album parameter is required")
			return
		}
		albums := d.Enrich.SearchByAlbum(r.Context(), album, intParam(q.Get("limit"), defaultSearchLimit), boolParam(q.Get("includeArt")))
		OK(w, http.StatusOK, SearchResults{Results: albums, Total: len(albums)})
	}
}

func MetadataArtistAlbum(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		artist := strings.TrimSpace(q.Get("artist"))
		album := strings.TrimSpace(q.Get("album"))
		if artist == "" || album == "" {
			BadRequest(w, "Artist and album parameters are required")
			return
		}
		albums := d.Enrich.SearchArtistAlbum(r.Context(), artist, album, intParam(q.Get("limit"), defaultSearchLimit), boolParam(q.Get("includeArt")))
		OK(w, http.StatusOK, SearchResults{Results: albums, Total: len(albums)})
	}
}

func MetadataRelease(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		album, err := d.Enrich.Release(r.Context(), chi.URLParam(r, "releaseId"), boolParam(r.URL.Query().Get("includeArt")))
		if err != nil {
			rs.Error(w, r, err, "Release not found", "Failed to fetch release")
			return
		}
		OK(w, http.StatusOK, album)
	}
}

func intParam(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

func boolParam(raw string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return b
}
