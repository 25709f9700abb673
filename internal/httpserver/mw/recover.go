package mw

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/disco/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/disco/internal/logger"
)

// Recover turns a handler panic into a logged 500 envelope.
func Recover(log logger.Logger, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic while serving request",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("request_id", middleware.GetReqID(r.Context())),
					logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())))

				msg := "An unexpected error occurred"
				if !production {
					msg = fmt.Sprint(rec)
				}
				handlers.Fail(w, http.StatusInternalServerError, msg)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
