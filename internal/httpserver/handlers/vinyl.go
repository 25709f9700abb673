package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/disco/internal/domain"
	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
)

const (
	// MaxBodyBytes caps JSON request bodies. Records may embed cover art.
	MaxBodyBytes = 10 << 20

	recordNotFound = "Vinyl record not found"
)

func ListVinyl(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := domain.ParseQueryFilter(r.URL.Query())
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				WriteJSON(w, http.StatusBadRequest, Envelope{
					Error:   "Validation Error",
					Message: "Invalid query parameters",
					Details: verr.Details,
				})
				return
			}
			BadRequest(w, err.Error())
			return
		}

		page, err := d.Catalog.List(r.Context(), f)
		if err != nil {
			rs.Error(w, r, err, recordNotFound, "Failed to fetch vinyl records")
			return
		}
		OK(w, http.StatusOK, page)
	}
}

func GetVinyl(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			rs.Error(w, r, err, recordNotFound, "Failed to fetch vinyl record")
			return
		}
		OK(w, http.StatusOK, rec)
	}
}

func VinylStats(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Catalog.Stats(r.Context())
		if err != nil {
			rs.Error(w, r, err, recordNotFound, "Failed to fetch collection statistics")
			return
		}
		OK(w, http.StatusOK, stats)
	}
}

func CreateVinyl(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.RecordInput
		if !decodeBody(w, r, &in) {
			return
		}

		rec, err := d.Catalog.Create(r.Context(), in)
		if err != nil {
			rs.Error(w, r, err, recordNotFound, "Failed to create vinyl record")
			return
		}
		OK(w, http.StatusCreated, rec)
	}
}

func UpdateVinyl(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.RecordInput
		if !decodeBody(w, r, &in) {
			return
		}

		rec, err := d.Catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			rs.Error(w, r, err, recordNotFound, "Failed to update vinyl record")
			return
		}
		OK(w, http.StatusOK, rec)
	}
}

func DeleteVinyl(d deps.Deps) http.HandlerFunc {
	rs := responder{log: d.Logger, production: d.Production}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Catalog.Delete(r.Context(), id); err != nil {
			rs.Error(w, r, err, recordNotFound, "Failed to delete vinyl record")
			return
		}
		OK(w, http.StatusOK, MessageData{Message: "Record deleted successfully"})
	}
}

// decodeBody reads a JSON body into v, writing a 400 envelope on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			BadRequest(w, "Request body is required")
			return false
		}
		BadRequest(w, "Invalid JSON body")
		return false
	}
	return true
}
