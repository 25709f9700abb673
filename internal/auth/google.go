package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/MrSnakeDoc/disco/internal/domain"
	"github.com/MrSnakeDoc/disco/internal/utils"
)

const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrUserNotFound is returned when the provider profile carries no user id.
var ErrUserNotFound = errors.New("user not found")

// GoogleConfig configures the Google login flow. AuthURL, TokenURL and
// UserInfoURL override Google's endpoints when set.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// Google runs the OAuth2 authorization code flow against Google and turns the
// resulting profile into a session token.
type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
	tokens      *Tokens
}

type userInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// NewGoogle creates the login flow.
func NewGoogle(cfg GoogleConfig, tokens *Tokens) *Google {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}

	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     endpoint,
			Scopes:       []string{"profile", "email"},
		},
		userInfoURL: cfg.UserInfoURL,
		tokens:      tokens,
	}
}

// LoginURL returns the consent page URL carrying a fresh signed state.
func (g *Google) LoginURL() (string, error) {
	state, err := g.tokens.IssueState()
	if err != nil {
		return "", err
	}
	return g.oauth.AuthCodeURL(state), nil
}

// Callback verifies state, exchanges code and returns the user with a session token.
func (g *Google) Callback(ctx context.Context, state, code string) (domain.Identity, string, error) {
	if err := g.tokens.VerifyState(state); err != nil {
		return domain.Identity{}, "", err
	}
	if code == "" {
		return domain.Identity{}, "", errors.New("missing authorization code")
	}

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("exchange code: %w", err)
	}

	info, err := g.fetchUserInfo(ctx, tok)
	if err != nil {
		return domain.Identity{}, "", err
	}
	if info.ID == "" {
		return domain.Identity{}, "", ErrUserNotFound
	}

	id := domain.Identity{
		ID:       info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
		GoogleID: info.ID,
	}
	session, err := g.tokens.Issue(id)
	if err != nil {
		return domain.Identity{}, "", err
	}
	return id, session, nil
}

func (g *Google) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, http.NoBody)
	if err != nil {
		return userInfo{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return userInfo{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer utils.DrainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return userInfo{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return userInfo{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return info, nil
}

// SuccessRedirect builds the frontend URL handing over the session token and user.
func SuccessRedirect(frontendURL, token string, user domain.Identity) (string, error) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}
	return withQuery(frontendURL, url.Values{
		"token":   {token},
		"user":    {string(userJSON)},
		"success": {"true"},
	})
}

// FailureRedirect builds the frontend URL reporting a failed login.
func FailureRedirect(frontendURL, reason string) string {
	u, err := withQuery(frontendURL, url.Values{"error": {reason}})
	if err != nil {
		return frontendURL + "?error=" + url.QueryEscape(reason)
	}
	return u
}

func withQuery(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse frontend url: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
