package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.Now()
		WriteJSON(w, http.StatusOK, healthzResponse{
			Status:        "OK",
			Message:       "Disco API is running",
			Timestamp:     now.UTC().Format(time.RFC3339),
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: now.Sub(start).Seconds(),
		})
	}
}
