package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/disco/internal/auth"
	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
	"github.com/MrSnakeDoc/disco/internal/logger"
)

// GoogleLogin redirects to the Google consent page.
func GoogleLogin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := d.Google.LoginURL()
		if err != nil {
			d.Logger.Error("failed to start google login", logger.Error(err))
			http.Redirect(w, r, auth.FailureRedirect(d.FrontendURL, "auth_failed"), http.StatusFound)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// GoogleCallback completes the login and hands the session token to the frontend.
// Every outcome is a redirect.
func GoogleCallback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			d.Logger.Warn("google login refused", logger.String("error", e))
			http.Redirect(w, r, auth.FailureRedirect(d.FrontendURL, "auth_failed"), http.StatusFound)
			return
		}

		user, token, err := d.Google.Callback(r.Context(), q.Get("state"), q.Get("code"))
		if err != nil {
			reason := "auth_failed"
			if errors.Is(err, auth.ErrUserNotFound) {
				reason = "user_not_found"
			}
			d.Logger.Warn("google login failed", logger.String("reason", reason), logger.Error(err))
			http.Redirect(w, r, auth.FailureRedirect(d.FrontendURL, reason), http.StatusFound)
			return
		}

		target, err := auth.SuccessRedirect(d.FrontendURL, token, user)
		if err != nil {
			d.Logger.Error("failed to build login redirect", logger.Error(err))
			http.Redirect(w, r, auth.FailureRedirect(d.FrontendURL, "auth_failed"), http.StatusFound)
			return
		}

		d.Logger.Info("user logged in", logger.String("user_id", user.ID), logger.String("email", user.Email))
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// Logout acknowledges a logout. Tokens are not revoked server side.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		OK(w, http.StatusOK, MessageData{Message: "Logged out successfully"})
	}
}

// Me returns the authenticated identity.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			Fail(w, http.StatusUnauthorized, "Access token required")
			return
		}
		OK(w, http.StatusOK, id)
	}
}
