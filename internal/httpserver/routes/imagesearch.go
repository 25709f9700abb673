package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
	"github.com/MrSnakeDoc/disco/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/disco/internal/httpserver/mw"
)

func init() { Register(registerImageSearch) }

func registerImageSearch(r chi.Router, d deps.Deps) {
	r.Route("/image-search", func(r chi.Router) {
		r.Use(mw.RequireAuth(d.Tokens, d.Logger), mw.RateLimit(rateLimitConfig(d)))
		r.Get("/search", handlers.ImageSearch(d))
		r.Post("/download", handlers.ImageDownload(d))
	})
}
