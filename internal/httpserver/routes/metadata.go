package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/disco/internal/catalog"
	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
	"github.com/MrSnakeDoc/disco/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/disco/internal/httpserver/mw"
)

func init() { Register(registerMetadata) }

func registerMetadata(r chi.Router, d deps.Deps) {
	r.Route("/metadata", func(r chi.Router) {
		read := r.With(mw.ReadAuth(d.AllowPublicRead, d.Tokens, d.Logger))
		read.Get("/artists", handlers.Distinct(d, catalog.FieldArtists))
		read.Get("/genres", handlers.Distinct(d, catalog.FieldGenres))
		read.Get("/owners", handlers.Distinct(d, catalog.FieldOwners))

		lookup := r.With(mw.RequireAuth(d.Tokens, d.Logger), mw.RateLimit(rateLimitConfig(d)))
		lookup.Get("/search", handlers.MetadataSearch(d))
		lookup.Get("/artist/{artist}", handlers.MetadataByArtist(d))
		lookup.Get("/album", handlers.MetadataByAlbum(d))
		lookup.Get("/artist-album", handlers.MetadataArtistAlbum(d))
		lookup.Get("/release/{releaseId}", handlers.MetadataRelease(d))

		admin := r.With(mw.RequireAuth(d.Tokens, d.Logger), mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
		admin.Post("/cache/invalidate", handlers.InvalidateCache(d))
		admin.Get("/cache/status", handlers.CacheStatus(d))
	})
}
