package auth

import (
	"time"

	"github.com/benvon/task-tracker/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// claimsFromToken copies the registered claims plus uid/email out of a
// verified token. uid falls back to sub for tokens minted elsewhere.
func claimsFromToken(token jwt.Token) *models.TokenClaims {
	claims := &models.TokenClaims{
		Iss: token.Issuer(),
		Exp: unixOrZero(token.Expiration()),
		Iat: unixOrZero(token.IssuedAt()),
	}

	if aud := token.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}

	if uid, ok := token.Get("uid"); ok {
		if uidStr, ok := uid.(string); ok {
			claims.UID = uidStr
		}
	}
	if claims.UID == "" {
		claims.UID = token.Subject()
	}

	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}

	return claims
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
