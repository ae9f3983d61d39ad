// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/kinograph/kinograph/internal/auth"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/store"
)

// AuthHandler serves registration, login, logout, and identity endpoints.
type AuthHandler struct {
	users      *store.UserStore
	sessions   auth.SessionStore
	sessionTTL time.Duration
}

// NewAuthHandler creates the auth endpoints handler.
func NewAuthHandler(users *store.UserStore, sessions auth.SessionStore, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).Str("component", "api").Msg("Password hashing failed")
		respondErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	user := &store.User{
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			respondErrorCode(w, r, http.StatusConflict, "USER_EXISTS", "Username is already taken")
			return
		}
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).Str("component", "api").Msg("User creation failed")
		respondErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	ctxLogger := logging.Ctx(r.Context())
	ctxLogger.Info().
		Str("component", "api").
		Str("username", sanitizeLogValue(req.Username)).
		Msg("User registered")

	respondJSON(w, r, http.StatusCreated, map[string]string{"username": user.Username}, nil)
}

// Login handles POST /auth/login. Unknown usernames and wrong passwords
// produce the same response so accounts cannot be enumerated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Get(req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondErrorCode(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).Str("component", "api").Msg("User lookup failed")
		respondErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		respondErrorCode(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	}

	session := auth.NewSession(user.Username, h.sessionTTL)
	if err := h.sessions.Create(session); err != nil {
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).Str("component", "api").Msg("Session creation failed")
		respondErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	ctxLogger := logging.Ctx(r.Context())
	ctxLogger.Info().
		Str("component", "api").
		Str("username", sanitizeLogValue(user.Username)).
		Msg("User logged in")

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	}, nil)
}

// Logout handles POST /auth/logout. Mounted behind RequireAuth, so the
// bearer token is known-valid here.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		respondErrorCode(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}
	if err := h.sessions.Delete(token); err != nil {
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).Str("component", "api").Msg("Session deletion failed")
		respondErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"}, nil)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sub, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		respondErrorCode(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"username": sub.Username}, nil)
}
