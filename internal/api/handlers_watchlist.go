// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"errors"
	"net/http"

	"github.com/kinograph/kinograph/internal/auth"
	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/models"
	"github.com/kinograph/kinograph/internal/store"
)

// WatchlistHandler serves the per-user watchlist endpoints. All routes are
// mounted behind RequireAuth.
type WatchlistHandler struct {
	watchlist *store.WatchlistStore
	catalog   *catalog.Catalog
}

// NewWatchlistHandler creates the watchlist endpoints handler.
func NewWatchlistHandler(w *store.WatchlistStore, c *catalog.Catalog) *WatchlistHandler {
	return &WatchlistHandler{watchlist: w, catalog: c}
}

// List handles GET /watchlist, resolving ids against the catalog. Ids whose
// movie has left the dataset are still returned, just without a record.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subject(w, r)
	if !ok {
		return
	}
	ids, err := h.watchlist.List(sub.Username)
	if err != nil {
		h.internalError(w, r, err, "Watchlist scan failed")
		return
	}

	entries := make([]models.WatchlistEntry, 0, len(ids))
	for _, id := range ids {
		entry := models.WatchlistEntry{MovieID: id}
		if rec, found := h.catalog.GetByID(id); found {
			entry.Movie = &rec
		}
		entries = append(entries, entry)
	}
	respondJSON(w, r, http.StatusOK, entries, &models.Metadata{Count: len(entries)})
}

// ListIDs handles GET /watchlist/ids.
func (h *WatchlistHandler) ListIDs(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subject(w, r)
	if !ok {
		return
	}
	ids, err := h.watchlist.List(sub.Username)
	if err != nil {
		h.internalError(w, r, err, "Watchlist scan failed")
		return
	}
	respondJSON(w, r, http.StatusOK, ids, &models.Metadata{Count: len(ids)})
}

// Add handles POST /watchlist/{movieID}. Unknown movies are rejected so a
// watchlist can only reference the catalog.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subject(w, r)
	if !ok {
		return
	}
	id, ok := moviePathID(w, r)
	if !ok {
		return
	}
	if _, found := h.catalog.GetByID(id); !found {
		respondErrorCode(w, r, http.StatusNotFound, "NOT_FOUND", "Movie not found")
		return
	}

	if err := h.watchlist.Add(sub.Username, id); err != nil {
		if errors.Is(err, store.ErrAlreadyInWatchlist) {
			respondErrorCode(w, r, http.StatusConflict, "ALREADY_IN_WATCHLIST", "Movie is already in the watchlist")
			return
		}
		h.internalError(w, r, err, "Watchlist add failed")
		return
	}
	respondJSON(w, r, http.StatusCreated, map[string]int64{"movie_id": id}, nil)
}

// Remove handles DELETE /watchlist/{movieID}.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subject(w, r)
	if !ok {
		return
	}
	id, ok := moviePathID(w, r)
	if !ok {
		return
	}

	if err := h.watchlist.Remove(sub.Username, id); err != nil {
		if errors.Is(err, store.ErrNotInWatchlist) {
			respondErrorCode(w, r, http.StatusNotFound, "NOT_IN_WATCHLIST", "Movie is not in the watchlist")
			return
		}
		h.internalError(w, r, err, "Watchlist remove failed")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]int64{"movie_id": id}, nil)
}

func (h *WatchlistHandler) subject(w http.ResponseWriter, r *http.Request) (auth.Subject, bool) {
	sub, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		respondErrorCode(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
		return auth.Subject{}, false
	}
	return sub, true
}

func (h *WatchlistHandler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	ctxLogger := logging.Ctx(r.Context())
	ctxLogger.Err(err).Str("component", "api").Msg(msg)
	respondErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
