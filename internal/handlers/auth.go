package handlers

import (
	"net/http"
	"time"

	logpkg "github.com/benvon/task-tracker/internal/logger"
	"github.com/benvon/task-tracker/internal/request"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionIssuer issues API session tokens. *auth.SessionTokens satisfies it.
type SessionIssuer interface {
	Issue(uid, email string) (string, time.Time, error)
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	sessions SessionIssuer
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionIssuer, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers auth routes on a router already carrying the
// /api/v1/auth prefix and the auth middleware
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods(http.MethodGet)
	r.HandleFunc("/token", h.IssueToken).Methods(http.MethodPost)
}

// MeResponse describes the authenticated caller
type MeResponse struct {
	UID    string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Source string `json:"source"`
}

// TokenResponse carries a freshly issued session token
type TokenResponse struct {
	UID         string `json:"uid"`
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresAt   string `json:"expiresAt"`
}

// GetMe returns the authenticated identity
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if id == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Identity not found in context")
		return
	}

	respondJSON(w, http.StatusOK, MeResponse{UID: id.UID, Email: id.Email, Source: id.Source})
}

// IssueToken exchanges any accepted credential, including an identity
// provider token, for a new session token
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if id == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Identity not found in context")
		return
	}

	token, expiresAt, err := h.sessions.Issue(id.UID, id.Email)
	if err != nil {
		h.logger.Error("issue_session_token_failed",
			zap.String("owner_uid", logpkg.SanitizeUserID(id.UID)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	h.logger.Info("session_token_issued",
		zap.String("owner_uid", logpkg.SanitizeUserID(id.UID)),
		zap.String("source", id.Source),
	)
	respondJSON(w, http.StatusOK, TokenResponse{
		UID:         id.UID,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	})
}
