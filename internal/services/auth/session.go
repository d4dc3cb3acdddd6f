package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/task-tracker/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	DefaultIssuer   = "tasks-api"
	DefaultAudience = "tasks-web"
	DefaultTTL      = 7 * 24 * time.Hour

	// MinSecretLength is the shortest HS256 secret accepted, in bytes
	MinSecretLength = 16
)

// SessionTokens issues and verifies the API's own HS256 session tokens
type SessionTokens struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionTokens creates a session token service. Empty issuer, audience
// and zero ttl take the package defaults.
func NewSessionTokens(secret, issuer, audience string, ttl time.Duration) (*SessionTokens, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if audience == "" {
		audience = DefaultAudience
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionTokens{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Issue signs a session token for uid and returns it with its expiry
func (s *SessionTokens) Issue(uid, email string) (string, time.Time, error) {
	if uid == "" {
		return "", time.Time{}, errors.New("uid is required")
	}

	now := s.now()
	expires := now.Add(s.ttl)

	builder := jwt.NewBuilder().
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		Subject(uid).
		IssuedAt(now).
		Expiration(expires).
		Claim("uid", uid)
	if email != "" {
		builder = builder.Claim("email", email)
	}

	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), expires, nil
}

// Verify checks signature, issuer, audience and expiry
func (s *SessionTokens) Verify(ctx context.Context, tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify session token: %w", err)
	}

	claims := claimsFromToken(token)
	if claims.UID == "" {
		return nil, errors.New("session token missing uid claim")
	}
	return claims, nil
}

// Source names this verifier in logs and on the resulting identity
func (s *SessionTokens) Source() string {
	return "session"
}
