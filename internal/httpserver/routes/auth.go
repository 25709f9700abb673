package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
	"github.com/MrSnakeDoc/disco/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/disco/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	r.Route("/auth", func(r chi.Router) {
		limited := r.With(mw.RateLimit(rateLimitConfig(d)))
		limited.Get("/google", handlers.GoogleLogin(d))
		limited.Get("/google/callback", handlers.GoogleCallback(d))

		r.Get("/logout", handlers.Logout(d))
		r.With(mw.RequireAuth(d.Tokens, d.Logger)).Get("/me", handlers.Me(d))
	})
}

func rateLimitConfig(d deps.Deps) mw.RateLimitConfig {
	return mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RatePerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}
}
