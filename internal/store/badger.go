// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package store provides the BadgerDB persistence layer for users and
// watchlists. One DB instance is shared by all stores and owned by the
// composition root.
package store

import (
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/kinograph/kinograph/internal/logging"
)

// Open opens (or creates) the Badger database at path.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{}).
		WithCompactL0OnClose(true)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", path, err)
	}
	logging.Info().Str("component", "store").Str("path", path).Msg("Badger store opened")
	return db, nil
}

// badgerLogger routes Badger's internal logging through zerolog. Badger's
// messages arrive with trailing newlines; trim them so the JSON stays clean.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Str("component", "badger").Msg(trimmedf(format, args...))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Str("component", "badger").Msg(trimmedf(format, args...))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Str("component", "badger").Msg(trimmedf(format, args...))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Str("component", "badger").Msg(trimmedf(format, args...))
}

func trimmedf(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
