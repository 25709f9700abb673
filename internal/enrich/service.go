package enrich

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/disco/internal/logger"
)

// probeParallelism bounds concurrent requests to the cover art host.
const probeParallelism = 5

// CoverResult is one confirmed cover found by SearchCovers.
type CoverResult struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Service looks releases up and annotates them with cover art.
// Upstream failures never fail a search: they are logged and yield no results.
type Service struct {
	mb     *MusicBrainz
	covers *Covers
	log    logger.Logger
}

// NewService creates an enrichment service.
func NewService(mb *MusicBrainz, covers *Covers, log logger.Logger) *Service {
	return &Service{mb: mb, covers: covers, log: log}
}

// Search runs a free-text release search.
func (s *Service) Search(ctx context.Context, query string, limit int, includeArt bool) []Album {
	return s.search(ctx, query, limit, includeArt)
}

// SearchArtistAlbum searches releases matching both an artist and an album title.
func (s *Service) SearchArtistAlbum(ctx context.Context, artist, album string, limit int, includeArt bool) []Album {
	return s.search(ctx, ArtistAlbumQuery(artist, album), limit, includeArt)
}

// SearchByArtist searches releases by artist name.
func (s *Service) SearchByArtist(ctx context.Context, artist string, limit int, includeArt bool) []Album {
	return s.search(ctx, ArtistQuery(artist), limit, includeArt)
}

// SearchByAlbum searches releases by title.
func (s *Service) SearchByAlbum(ctx context.Context, album string, limit int, includeArt bool) []Album {
	return s.search(ctx, AlbumQuery(album), limit, includeArt)
}

// Release fetches one release and probes its cover. Not-found is returned as
// domain.ErrNotFound.
func (s *Service) Release(ctx context.Context, id string, includeArt bool) (Album, error) {
	a, err := s.mb.Release(ctx, id)
	if err != nil {
		return Album{}, err
	}
	albums := []Album{a}
	s.annotate(ctx, albums, includeArt)
	return albums[0], nil
}

// SearchCovers returns up to limit confirmed cover images for a query. When the
// full query finds nothing, the first word alone is tried as an artist guess.
func (s *Service) SearchCovers(ctx context.Context, query string, limit int) []CoverResult {
	limit = clampLimit(limit)
	results := s.searchCovers(ctx, query, limit)

	if len(results) == 0 {
		if first, _, found := strings.Cut(strings.TrimSpace(query), " "); found && first != "" {
			s.log.Debug("no covers for full query, retrying with first word",
				logger.String("query", query),
				logger.String("retry", first))
			results = s.searchCovers(ctx, first, limit)
		}
	}
	return results
}

// Download fetches an image and returns a thumbnail data URL.
func (s *Service) Download(ctx context.Context, rawURL string) (string, error) {
	return s.covers.DownloadThumbnail(ctx, rawURL)
}

func (s *Service) searchCovers(ctx context.Context, query string, limit int) []CoverResult {
	albums, err := s.mb.Search(ctx, query, min(limit*2, MaxLimit))
	if err != nil {
		s.log.Warn("cover search failed", logger.String("query", query), logger.Error(err))
		return []CoverResult{}
	}
	s.annotate(ctx, albums, false)

	out := make([]CoverResult, 0, limit)
	for _, a := range albums {
		if !a.HasCoverArt {
			continue
		}
		out = append(out, CoverResult{
			URL:    a.CoverArtURL,
			Title:  a.AlbumName + " by " + a.ArtistName,
			Width:  300,
			Height: 300,
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

func (s *Service) search(ctx context.Context, query string, limit int, includeArt bool) []Album {
	albums, err := s.mb.Search(ctx, query, limit)
	if err != nil {
		s.log.Warn("metadata search failed", logger.String("query", query), logger.Error(err))
		return []Album{}
	}
	s.annotate(ctx, albums, includeArt)
	return albums
}

// annotate probes every album for cover art in a bounded parallel batch and,
// with includeArt, embeds a thumbnail of each confirmed cover. Per-item
// failures leave that album without art.
func (s *Service) annotate(ctx context.Context, albums []Album, includeArt bool) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeParallelism)

	for i := range albums {
		a := &albums[i]
		if a.ReleaseID == "" {
			continue
		}
		g.Go(func() error {
			if !s.covers.Exists(gctx, a.ReleaseID) {
				return nil
			}
			a.HasCoverArt = true
			a.CoverArtURL = s.covers.FrontURL(a.ReleaseID)

			if includeArt {
				thumb, err := s.covers.DownloadThumbnail(gctx, a.CoverArtURL)
				if err != nil {
					s.log.Debug("cover download failed",
						logger.String("release_id", a.ReleaseID),
						logger.Error(err))
					return nil
				}
				a.CoverArt = thumb
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
}
