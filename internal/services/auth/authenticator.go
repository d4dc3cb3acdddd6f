// Package auth verifies bearer credentials and issues session tokens.
//
// The API's own HS256 session token is tried first; an identity-provider ID
// token is accepted as a fallback when a provider is configured.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/benvon/task-tracker/internal/apperrors"
	"github.com/benvon/task-tracker/internal/models"
)

// ErrMissingBearer is returned when the Authorization header has no bearer token
var ErrMissingBearer = errors.New("missing bearer token")

// TokenVerifier verifies one kind of bearer token
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.TokenClaims, error)
	Source() string
}

// Authenticator resolves a bearer token into an Identity by trying each
// verifier in order
type Authenticator struct {
	verifiers []TokenVerifier
}

// NewAuthenticator creates an authenticator over the given verifiers. Nil
// entries are dropped so optional verifiers can be passed unconditionally.
func NewAuthenticator(verifiers ...TokenVerifier) *Authenticator {
	a := &Authenticator{}
	for _, v := range verifiers {
		if v != nil {
			a.verifiers = append(a.verifiers, v)
		}
	}
	return a
}

// Authenticate returns the identity carried by token. Every failure is an
// *apperrors.AuthenticationError wrapping the last verifier's error.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, apperrors.Authentication("Missing Authorization: Bearer <token>", ErrMissingBearer)
	}

	var lastErr error
	for _, v := range a.verifiers {
		claims, err := v.Verify(ctx, token)
		if err != nil {
			lastErr = err
			continue
		}
		return &models.Identity{UID: claims.UID, Email: claims.Email, Source: v.Source()}, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no token verifiers configured")
	}
	return nil, apperrors.Authentication("Invalid token", lastErr)
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingBearer
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}
