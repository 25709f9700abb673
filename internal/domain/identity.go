package domain

// Identity is the authenticated principal of a request.
// It is rebuilt from the session token on every request and never stored.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture,omitempty"`
	GoogleID string `json:"googleId"`
}
