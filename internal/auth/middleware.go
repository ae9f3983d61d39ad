// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/models"
)

type contextKey string

const subjectKey contextKey = "auth_subject"

// Subject identifies the authenticated caller of a request.
type Subject struct {
	Username string
}

// ContextWithSubject attaches the authenticated subject to a context.
func ContextWithSubject(ctx context.Context, sub Subject) context.Context {
	return context.WithValue(ctx, subjectKey, sub)
}

// SubjectFromContext extracts the authenticated subject, if present.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	sub, ok := ctx.Value(subjectKey).(Subject)
	return sub, ok
}

// Middleware authenticates requests by resolving bearer tokens to sessions.
type Middleware struct {
	sessions SessionStore
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(sessions SessionStore) *Middleware {
	return &Middleware{sessions: sessions}
}

// RequireAuth rejects requests without a valid bearer session and injects
// the session's subject into the request context for handlers downstream.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			unauthorized(w, r, "Missing bearer token")
			return
		}
		session, err := m.sessions.Get(token)
		if err != nil {
			unauthorized(w, r, "Invalid or expired session")
			return
		}
		ctx := ContextWithSubject(r.Context(), Subject{Username: session.Username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from an "Authorization: Bearer x" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	logger := logging.Ctx(r.Context())
	logger.Debug().
		Str("component", "auth").
		Str("path", r.URL.Path).
		Msg("Rejected unauthenticated request")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	resp := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
		Metadata: &models.Metadata{Timestamp: time.Now().UTC()},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Err(err).Str("component", "auth").Msg("Failed to encode auth error response")
	}
}
