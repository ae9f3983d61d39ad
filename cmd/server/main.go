// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Command server runs the Kinograph HTTP service: catalog queries, hybrid
// search, auth, and watchlists behind one chi router.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kinograph/kinograph/internal/api"
	"github.com/kinograph/kinograph/internal/auth"
	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
	"github.com/kinograph/kinograph/internal/search"
	"github.com/kinograph/kinograph/internal/store"
	"github.com/kinograph/kinograph/internal/vector"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Configuration load failed")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("component", "main").Msg("Kinograph starting")

	cat, err := catalog.Load(cfg.Dataset.Path)
	if err != nil {
		// No partial-catalog mode: a missing or malformed dataset is fatal.
		logging.Fatal().Err(err).Str("path", cfg.Dataset.Path).Msg("Dataset load failed")
	}
	metrics.CatalogRecords.Set(float64(cat.Size()))

	db, err := store.Open(cfg.Security.DataDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Store open failed")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Err(err).Str("component", "main").Msg("Store close failed")
		}
	}()

	users := store.NewUserStore(db)
	watchlist := store.NewWatchlistStore(db)

	sessions, err := auth.NewSessionStore(cfg.Security.SessionBackend, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Session store setup failed")
	}
	defer sessions.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auth.StartCleanupRoutine(ctx, sessions, cfg.Security.SessionCleanupInterval)

	svc := search.NewService(cat, buildGateway(cfg.Vector))

	router := api.NewRouter(api.RouterDeps{
		Movies:    api.NewMovieHandler(cat, svc, cfg.API),
		Auth:      api.NewAuthHandler(users, sessions, cfg.Security.SessionTTL),
		Watchlist: api.NewWatchlistHandler(watchlist, cat),
		Health:    api.NewHealthHandler(cat, func() bool { return !db.IsClosed() }),
		AuthMW:    auth.NewMiddleware(sessions),
		Security:  cfg.Security,
		StaticDir: cfg.Dataset.StaticDir,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("component", "main").Str("addr", srv.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Str("component", "main").Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Err(err).Str("component", "main").Msg("Graceful shutdown failed")
	}
	logging.Info().Str("component", "main").Msg("Kinograph stopped")
}

// buildGateway wires the similarity stack. When the stack is disabled by
// config, semantic endpoints degrade to upstream-unavailable responses
// while title search keeps working.
func buildGateway(cfg config.VectorConfig) search.SimilarityGateway {
	if !cfg.Enabled {
		logging.Warn().Str("component", "main").Msg("Similarity stack disabled by config")
		return disabledGateway{}
	}
	embedder := vector.NewOpenAIEmbedder(vector.EmbedderConfig{
		BaseURL:           cfg.EmbeddingURL,
		APIKey:            cfg.EmbeddingAPIKey,
		Model:             cfg.EmbeddingModel,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		MaxRetries:        cfg.MaxRetries,
	})
	qdrant := vector.NewQdrantClient(vector.QdrantConfig{
		BaseURL:    cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.Collection,
		Timeout:    cfg.Timeout,
	})
	return vector.NewGateway(embedder, qdrant, cfg.Timeout)
}

type disabledGateway struct{}

func (disabledGateway) SearchSimilar(context.Context, string, int) ([]vector.Document, error) {
	return nil, vector.ErrUpstreamUnavailable
}
