package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/disco/internal/auth"
	"github.com/MrSnakeDoc/disco/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/disco/internal/logger"
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireAuth rejects requests without a valid session token and attaches the
// identity of the others to the request context.
func RequireAuth(tokens *auth.Tokens, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				handlers.Fail(w, http.StatusUnauthorized, "Access token required")
				return
			}

			id, err := tokens.Parse(raw)
			if err != nil {
				log.Debug("authentication failed",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				handlers.Fail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present and never rejects.
func OptionalAuth(tokens *auth.Tokens, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := bearerToken(r); raw != "" {
				id, err := tokens.Parse(raw)
				if err != nil {
					log.Debug("ignoring invalid token on optional auth route", logger.Error(err))
				} else {
					r = r.WithContext(auth.WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ReadAuth guards read routes: optional when public reads are allowed, required otherwise.
func ReadAuth(public bool, tokens *auth.Tokens, log logger.Logger) func(http.Handler) http.Handler {
	if public {
		return OptionalAuth(tokens, log)
	}
	return RequireAuth(tokens, log)
}
