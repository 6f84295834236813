package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/auth"
	"github.com/cypherlabdev/odds-gateway-service/internal/models"
)

// Authenticator is the auth surface used by the REST layer
type Authenticator interface {
	auth.Gate
	Login(ctx context.Context, username, password, device string) (*auth.LoginResult, error)
	Logout(ctx context.Context, token string) error
	User(ctx context.Context, userID string) (models.UserSummary, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	RevokeSessions(ctx context.Context, userID string) error
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Device   string `json:"device"`
}

// AuthHandler handles login, logout and user management
type AuthHandler struct {
	auth   Authenticator
	logger zerolog.Logger
}

// NewAuthHandler creates a new auth HTTP handler
func NewAuthHandler(authenticator Authenticator, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authenticator,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublicRoutes registers routes that do not need a token
func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

// RegisterRoutes registers routes behind RequireAuth
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/verify", h.handleVerify)
}

// RegisterAdminRoutes registers user management routes behind RequireAuth and RequireAdmin
func (h *AuthHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/users", h.handleListUsers)
	r.Delete("/users/{userID}/sessions", h.handleRevokeSessions)
}

// handleLogin handles POST /api/auth/login
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, h.logger, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Device == "" {
		req.Device = r.UserAgent()
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password, req.Device)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, h.logger, http.StatusUnauthorized, "Invalid username or password")
		return
	case errors.Is(err, auth.ErrDeviceLimit):
		respondError(w, h.logger, http.StatusForbidden, "Device limit reached, log out another device first")
		return
	case err != nil:
		h.logger.Error().Err(err).Str("username", req.Username).Msg("login failed")
		respondError(w, h.logger, http.StatusInternalServerError, "Login failed")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   result.Token,
		"user":    result.User,
	})
}

// handleLogout handles POST /api/auth/logout
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
		respondError(w, h.logger, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"success": true})
}

// handleVerify handles GET /api/auth/verify
func (h *AuthHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	user, err := h.auth.User(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, h.logger, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// handleListUsers handles GET /api/users
func (h *AuthHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list users")
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

// handleRevokeSessions handles DELETE /api/users/{userID}/sessions
func (h *AuthHandler) handleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	err := h.auth.RevokeSessions(r.Context(), userID)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, h.logger, http.StatusNotFound, "User not found")
		return
	case err != nil:
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to revoke sessions")
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to revoke sessions")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"success": true})
}
