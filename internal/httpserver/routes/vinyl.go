package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
	"github.com/MrSnakeDoc/disco/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/disco/internal/httpserver/mw"
)

func init() { Register(registerVinyl) }

func registerVinyl(r chi.Router, d deps.Deps) {
	r.Route("/vinyl", func(r chi.Router) {
		read := r.With(mw.ReadAuth(d.AllowPublicRead, d.Tokens, d.Logger))
		read.Get("/", handlers.ListVinyl(d))
		read.Get("/stats", handlers.VinylStats(d))
		read.Get("/{id}", handlers.GetVinyl(d))

		write := r.With(mw.RequireAuth(d.Tokens, d.Logger))
		write.Post("/", handlers.CreateVinyl(d))
		write.Put("/{id}", handlers.UpdateVinyl(d))
		write.Delete("/{id}", handlers.DeleteVinyl(d))
	})
}
