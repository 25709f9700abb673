package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/disco/internal/cache"
	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
	"github.com/MrSnakeDoc/disco/internal/logger"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type cacheStatusResponse struct {
	cache.Status
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

type invalidateResponse struct {
	Message       string    `json:"message"`
	InvalidatedAt time.Time `json:"invalidatedAt"`
}

// CacheStatus reports the cache state and the health of its backend.
func CacheStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Cache.Status(r.Context())

		components := map[string]componentStatus{
			"cache": {
				OK:   true,
				Mode: cacheMode(st),
			},
		}
		if st.Backend == "redis" {
			components["redis"] = checkRedis(r.Context(), d)
		}
		components["resolver"] = componentStatus{
			OK:   st.Locator != "",
			Mode: "range-guessing",
		}

		OK(w, http.StatusOK, cacheStatusResponse{
			Status:     st,
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// InvalidateCache drops every cached snapshot now.
func InvalidateCache(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Cache.Invalidate(r.Context()); err != nil {
			rs.Error(w, r, err, "Not found", "Failed to invalidate cache")
			return
		}
		d.Logger.Info("manual cache invalidation triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		OK(w, http.StatusOK, invalidateResponse{
			Message:       "Cache invalidated successfully",
			InvalidatedAt: d.Now().UTC(),
		})
	}
}

func cacheMode(st cache.Status) string {
	if !st.Enabled {
		return "disabled"
	}
	return st.Backend
}

func determineMode(components map[string]componentStatus) string {
	// Redis down = degraded (every read goes to the spreadsheet)
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded"
	}
	if resolver, exists := components["resolver"]; exists && !resolver.OK {
		return "cold"
	}
	return "optimal"
}

func checkRedis(parent context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "cache-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		reason := "unreachable"
		if !d.Production {
			reason = err.Error()
		}
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "cache-disabled",
			Error:  reason,
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "cache-enabled",
	}
}
