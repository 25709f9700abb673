package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/disco/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/disco/internal/logger"
	"github.com/MrSnakeDoc/disco/internal/utils"
)

// AllowOnlyCIDRS restricts a route group to the given IPs/CIDRs.
// An empty list does NOT filter (passthrough).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("admin allow-list empty, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("admin allow-list active",
		logger.Int("rules", len(allowed)),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("admin route denied",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path),
					logger.String("remote_addr", r.RemoteAddr))
				handlers.Fail(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
