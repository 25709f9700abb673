package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/disco/internal/domain"
	"github.com/MrSnakeDoc/disco/internal/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// MessageData is the payload of acknowledgements.
type MessageData struct {
	Message string `json:"message"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// Fail writes an error envelope. error is the status text.
func Fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Error: http.StatusText(status), Message: message})
}

// BadRequest writes a 400 envelope.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, message)
}

// NotFound writes the envelope for unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed writes the envelope for known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// responder maps service errors onto envelopes.
type responder struct {
	log        logger.Logger
	production bool
}

// Error writes the envelope matching err. notFound is the message used for
// domain.ErrNotFound, fallback the production message for unexpected errors.
func (rs responder) Error(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, Envelope{
			Error:   "Validation Error",
			Message: "Invalid input data",
			Details: verr.Details,
		})
	case errors.Is(err, domain.ErrNotFound):
		Fail(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, "Unauthorized")
	default:
		rs.log.Error(fallback,
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		msg := fallback
		if !rs.production {
			msg = err.Error()
		}
		Fail(w, http.StatusInternalServerError, msg)
	}
}
