package auth

import (
	"context"
	"fmt"

	"github.com/benvon/task-tracker/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// IdentityProviderVerifier accepts ID tokens signed by an external identity
// provider whose keys are published as a JWKS document
type IdentityProviderVerifier struct {
	jwksManager *JWKSManager
	jwksURL     string
	issuer      string
	audience    string
}

// NewIdentityProviderVerifier creates a verifier for one provider.
// An empty audience skips the audience check.
func NewIdentityProviderVerifier(jwksManager *JWKSManager, jwksURL, issuer, audience string) *IdentityProviderVerifier {
	return &IdentityProviderVerifier{
		jwksManager: jwksManager,
		jwksURL:     jwksURL,
		issuer:      issuer,
		audience:    audience,
	}
}

// Verify verifies an ID token and extracts its claims. The subject becomes the uid.
func (v *IdentityProviderVerifier) Verify(ctx context.Context, tokenString string) (*models.TokenClaims, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	claims := claimsFromToken(token)
	if subject := token.Subject(); subject != "" {
		claims.UID = subject
	}
	if claims.UID == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}
	return claims, nil
}

// Source names this verifier in logs and on the resulting identity
func (v *IdentityProviderVerifier) Source() string {
	return "idp"
}
