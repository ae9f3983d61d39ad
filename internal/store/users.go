// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package store

import (
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const userKeyPrefix = "user:"

var (
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when a username has no account.
	ErrUserNotFound = errors.New("user not found")
)

// User is a registered account. Only the bcrypt hash of the password is
// ever stored.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore persists accounts in BadgerDB, keyed by username.
type UserStore struct {
	db *badger.DB
}

// NewUserStore creates a user store on an already-open DB.
func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

func userKey(username string) []byte {
	return []byte(userKeyPrefix + username)
}

// Create stores a new account. Returns ErrUserExists when the username is
// already taken; the existence check and the write share one transaction.
func (s *UserStore) Create(user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(user.Username))
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(userKey(user.Username), data)
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return ErrUserExists
		}
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// Get returns the account for username, or ErrUserNotFound.
func (s *UserStore) Get(username string) (*User, error) {
	var user User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}
