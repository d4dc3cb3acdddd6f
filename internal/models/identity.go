package models

// Identity is the authenticated caller. UID scopes every task operation.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	// Source records which verifier accepted the credential ("session" or "idp")
	Source string `json:"-"`
}

// TokenClaims represents the claims carried by a verified bearer token
type TokenClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
	Aud   string `json:"aud"`
}
