// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
)

// ErrSessionNotFound is returned when a token has no live session.
var ErrSessionNotFound = errors.New("session not found")

// Session is one authenticated login. The token is an opaque UUID handed to
// the client as a bearer credential; everything the server needs lives here,
// keyed by that token.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// NewSession creates a session for username with a fresh token and the
// given time to live.
func NewSession(username string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Token:     uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// SessionStore persists sessions keyed by token. Implementations must be
// safe for concurrent use.
type SessionStore interface {
	Create(session *Session) error
	Get(token string) (*Session, error)
	Delete(token string) error
	DeleteExpired() (int, error)
	Count() (int, error)
	Close() error
}

// MemorySessionStore keeps sessions in process memory. Sessions do not
// survive a restart; use the Badger store when they must.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

// Create stores a session.
func (m *MemorySessionStore) Create(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.Token] = &cp
	return nil
}

// Get returns the session for token. Expired sessions are treated as
// absent and removed.
func (m *MemorySessionStore) Get(token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.IsExpired() {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// Delete removes the session for token. Deleting an absent token is not an
// error.
func (m *MemorySessionStore) Delete(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// DeleteExpired removes all expired sessions and returns how many.
func (m *MemorySessionStore) DeleteExpired() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for token, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of stored sessions, expired included.
func (m *MemorySessionStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// Close is a no-op for the memory store.
func (m *MemorySessionStore) Close() error {
	return nil
}

// StartCleanupRoutine launches a goroutine that periodically deletes
// expired sessions and refreshes the active-sessions gauge until the
// context is canceled.
func StartCleanupRoutine(ctx context.Context, store SessionStore, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := store.DeleteExpired()
				if err != nil {
					logging.Err(err).
						Str("component", "auth").
						Msg("Session cleanup failed")
					continue
				}
				if removed > 0 {
					logging.Debug().
						Str("component", "auth").
						Int("removed", removed).
						Msg("Expired sessions removed")
				}
				if count, err := store.Count(); err == nil {
					metrics.SessionsActive.Set(float64(count))
				}
			}
		}
	}()
}
