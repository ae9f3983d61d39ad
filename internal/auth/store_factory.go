// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package auth

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/kinograph/kinograph/internal/logging"
)

// NewSessionStore selects a session store backend by name: "memory" or
// "badger". The badger backend requires an open DB.
func NewSessionStore(backend string, db *badger.DB) (SessionStore, error) {
	switch backend {
	case "", "memory":
		logging.Info().Str("component", "auth").Msg("Using in-memory session store")
		return NewMemorySessionStore(), nil
	case "badger":
		if db == nil {
			return nil, fmt.Errorf("badger session store requires an open database")
		}
		logging.Info().Str("component", "auth").Msg("Using Badger session store")
		return NewBadgerSessionStore(db), nil
	default:
		return nil, fmt.Errorf("unknown session store backend %q", backend)
	}
}
