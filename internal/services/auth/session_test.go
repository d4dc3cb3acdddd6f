package auth

import (
	"context"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef-test-secret"

func TestNewSessionTokens(t *testing.T) {
	t.Parallel()

	if _, err := NewSessionTokens("short", "", "", 0); err == nil {
		t.Error("Expected error for short secret")
	}

	s, err := NewSessionTokens(testSecret, "", "", 0)
	if err != nil {
		t.Fatalf("NewSessionTokens failed: %v", err)
	}
	if s.issuer != DefaultIssuer || s.audience != DefaultAudience || s.ttl != DefaultTTL {
		t.Errorf("Expected defaults, got %s/%s/%s", s.issuer, s.audience, s.ttl)
	}
}

func TestSessionTokens_IssueVerify(t *testing.T) {
	t.Parallel()

	s, err := NewSessionTokens(testSecret, "", "", 0)
	if err != nil {
		t.Fatalf("NewSessionTokens failed: %v", err)
	}

	token, expires, err := s.Issue("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("Expected compact JWS, got %q", token)
	}
	if d := time.Until(expires); d < DefaultTTL-time.Minute || d > DefaultTTL+time.Minute {
		t.Errorf("Expected expiry about 7 days out, got %s", d)
	}

	claims, err := s.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UID != "user-1" || claims.Email != "user@example.com" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
	if claims.Iss != DefaultIssuer || claims.Aud != DefaultAudience {
		t.Errorf("Expected iss/aud %s/%s, got %s/%s", DefaultIssuer, DefaultAudience, claims.Iss, claims.Aud)
	}
	if claims.Exp != expires.Unix() {
		t.Errorf("Expected exp %d, got %d", expires.Unix(), claims.Exp)
	}
}

func TestSessionTokens_VerifyRejects(t *testing.T) {
	t.Parallel()

	issuer, _ := NewSessionTokens(testSecret, "", "", time.Hour)
	token, _, err := issuer.Issue("user-1", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	otherSecret, _ := NewSessionTokens("a-completely-different-secret", "", "", time.Hour)
	otherAudience, _ := NewSessionTokens(testSecret, "", "someone-else", time.Hour)
	otherIssuer, _ := NewSessionTokens(testSecret, "other-api", "", time.Hour)
	future, _ := NewSessionTokens(testSecret, "", "", time.Hour)
	future.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name     string
		verifier *SessionTokens
		token    string
	}{
		{name: "wrong secret", verifier: otherSecret, token: token},
		{name: "wrong audience", verifier: otherAudience, token: token},
		{name: "wrong issuer", verifier: otherIssuer, token: token},
		{name: "expired", verifier: future, token: token},
		{name: "garbage", verifier: issuer, token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.verifier.Verify(context.Background(), tt.token); err == nil {
				t.Error("Expected verification to fail")
			}
		})
	}
}

func TestSessionTokens_IssueRequiresUID(t *testing.T) {
	t.Parallel()

	s, _ := NewSessionTokens(testSecret, "", "", 0)
	if _, _, err := s.Issue("", "a@b.c"); err == nil {
		t.Error("Expected error for empty uid")
	}
}
