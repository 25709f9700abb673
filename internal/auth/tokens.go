package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/disco/internal/domain"
)

const (
	// DefaultTokenTTL is the lifetime of a session token.
	DefaultTokenTTL = 7 * 24 * time.Hour
	// StateTTL is the lifetime of an OAuth state token.
	StateTTL = 10 * time.Minute
	// MinSecretLength is the shortest accepted signing secret.
	MinSecretLength = 32

	stateAudience = "disco-oauth-state"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidState = errors.New("invalid oauth state")
)

// Claims are the session token claims. The subject is the user id.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture,omitempty"`
	GoogleID string `json:"googleId"`
	jwt.RegisteredClaims
}

type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session and OAuth state tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer. A non-positive ttl means DefaultTokenTTL.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters long", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the session token lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue mints a session token for id.
func (t *Tokens) Issue(id domain.Identity) (string, error) {
	now := t.now()
	claims := Claims{
		Email:    id.Email,
		Name:     id.Name,
		Picture:  id.Picture,
		GoogleID: id.GoogleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a session token and returns its identity. Every failure
// (bad signature, expiry, wrong algorithm, state token) wraps ErrInvalidToken.
func (t *Tokens) Parse(token string) (domain.Identity, error) {
	claims := &Claims{}
	if err := t.parse(token, claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return domain.Identity{
		ID:       claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
		GoogleID: claims.GoogleID,
	}, nil
}

// IssueState mints a short-lived token used as the OAuth state parameter.
func (t *Tokens) IssueState() (string, error) {
	now := t.now()
	claims := stateClaims{
		Nonce: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{stateAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return signed, nil
}

// VerifyState checks a state parameter returned by the OAuth provider.
func (t *Tokens) VerifyState(state string) error {
	claims := &stateClaims{}
	if err := t.parse(state, claims, jwt.WithAudience(stateAudience)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if claims.Nonce == "" {
		return fmt.Errorf("%w: missing nonce", ErrInvalidState)
	}
	return nil
}

func (t *Tokens) parse(token string, claims jwt.Claims, extra ...jwt.ParserOption) error {
	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}, extra...)

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("token not valid")
	}
	return nil
}
