// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const watchlistKeyPrefix = "watchlist:"

var (
	// ErrAlreadyInWatchlist is returned when adding a movie twice.
	ErrAlreadyInWatchlist = errors.New("movie already in watchlist")

	// ErrNotInWatchlist is returned when removing a movie that is absent.
	ErrNotInWatchlist = errors.New("movie not in watchlist")
)

// watchlistEntry is the stored value; the movie id also lives in the key.
type watchlistEntry struct {
	MovieID int64     `json:"movie_id"`
	AddedAt time.Time `json:"added_at"`
}

// WatchlistStore persists per-user movie-id sets in BadgerDB. Keys are
// "watchlist:<user>:<zero-padded movie id>" so a prefix scan yields one
// user's list in ascending movie-id order.
type WatchlistStore struct {
	db *badger.DB
}

// NewWatchlistStore creates a watchlist store on an already-open DB.
func NewWatchlistStore(db *badger.DB) *WatchlistStore {
	return &WatchlistStore{db: db}
}

func watchlistKey(username string, movieID int64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", watchlistKeyPrefix, username, movieID))
}

func watchlistUserPrefix(username string) []byte {
	return []byte(watchlistKeyPrefix + username + ":")
}

// Add puts a movie on the user's watchlist. Returns ErrAlreadyInWatchlist
// when it is already there.
func (s *WatchlistStore) Add(username string, movieID int64) error {
	data, err := json.Marshal(watchlistEntry{MovieID: movieID, AddedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal watchlist entry: %w", err)
	}
	key := watchlistKey(username, movieID)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyInWatchlist
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyInWatchlist) {
			return ErrAlreadyInWatchlist
		}
		return fmt.Errorf("store watchlist entry: %w", err)
	}
	return nil
}

// Remove takes a movie off the user's watchlist. Returns ErrNotInWatchlist
// when it was not there.
func (s *WatchlistStore) Remove(username string, movieID int64) error {
	key := watchlistKey(username, movieID)
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotInWatchlist
		}
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, ErrNotInWatchlist) {
			return ErrNotInWatchlist
		}
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	return nil
}

// List returns the user's watchlisted movie ids in ascending order. An
// empty watchlist yields an empty slice.
func (s *WatchlistStore) List(username string) ([]int64, error) {
	prefix := watchlistUserPrefix(username)
	ids := []int64{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			raw := strings.TrimPrefix(key, string(prefix))
			id, err := strconv.ParseInt(strings.TrimLeft(raw, "0"), 10, 64)
			if err != nil {
				// Key "…:000…0" is movie id 0.
				if strings.Trim(raw, "0") == "" {
					id = 0
				} else {
					continue
				}
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan watchlist: %w", err)
	}
	return ids, nil
}
