package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/disco/internal/enrich"
	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
)

const defaultCoverLimit = 10

type coverResults struct {
	Results []enrich.CoverResult `json:"results"`
}

type downloadRequest struct {
	ImageURL string `json:"imageUrl"`
}

type downloadResponse struct {
	Base64Data string `json:"base64Data"`
	Size       int    `json:"size"`
}

func ImageSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := strings.TrimSpace(q.Get("query"))
		if query == "" {
			BadRequest(w, "Query parameter is required")
			return
		}
		results := d.Enrich.SearchCovers(r.Context(), query, intParam(q.Get("limit"), defaultCoverLimit))
		OK(w, http.StatusOK, coverResults{Results: results})
	}
}

func ImageDownload(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		var req downloadRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.ImageURL) == "" {
			BadRequest(w, "imageUrl is required")
			return
		}

		data, err := d.Enrich.Download(r.Context(), req.ImageURL)
		if err != nil {
			rs.Error(w, r, err, "Image not found", "Failed to download image")
			return
		}
		OK(w, http.StatusOK, downloadResponse{Base64Data: data, Size: len(data)})
	}
}
