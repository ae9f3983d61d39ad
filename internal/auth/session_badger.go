// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package auth

import (
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// sessionKeyPrefix namespaces session entries inside the shared Badger DB.
const sessionKeyPrefix = "session:"

// BadgerSessionStore persists sessions in BadgerDB so logins survive
// restarts. Entries carry a Badger TTL matching the session expiry, so the
// store self-cleans even without the cleanup routine.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore creates a session store on an already-open Badger
// DB. The store does not own the DB; Close is a no-op.
func NewBadgerSessionStore(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

func sessionKey(token string) []byte {
	return []byte(sessionKeyPrefix + token)
}

// Create persists a session under its token.
func (b *BadgerSessionStore) Create(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(session.Token), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get returns the session for token, treating expired entries as absent.
func (b *BadgerSessionStore) Get(token string) (*Session, error) {
	var session Session
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(token))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.IsExpired() {
		_ = b.Delete(token)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes the session for token. Absent tokens are not an error.
func (b *BadgerSessionStore) Delete(token string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(token))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired scans for sessions whose payload expiry has passed but
// whose Badger TTL has not yet reclaimed them, and deletes them.
func (b *BadgerSessionStore) DeleteExpired() (int, error) {
	var expired []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var session Session
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				continue
			}
			if session.IsExpired() {
				expired = append(expired, session.Token)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	removed := 0
	for _, token := range expired {
		if err := b.Delete(token); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of stored session entries.
func (b *BadgerSessionStore) Count() (int, error) {
	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

// Close is a no-op; the underlying DB is shared and closed by its owner.
func (b *BadgerSessionStore) Close() error {
	return nil
}
