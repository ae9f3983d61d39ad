// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kinograph/kinograph/internal/auth"
	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/middleware"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Movies    *MovieHandler
	Auth      *AuthHandler
	Watchlist *WatchlistHandler
	Health    *HealthHandler
	AuthMW    *auth.Middleware
	Security  config.SecurityConfig
	// StaticDir is served under /static/ for locally stored posters.
	// Empty disables the mount.
	StaticDir string
}

// NewRouter assembles the chi router: probes and metrics at the root,
// versioned API under /api/v1, poster assets under /static/.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(securityHeaders)
	r.Use(corsMiddleware(deps.Security.CORSOrigins))

	r.Get("/health", deps.Health.Health)
	r.Get("/ready", deps.Health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if deps.StaticDir != "" {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir)))
		r.With(staticCacheHeaders).Handle("/static/*", fileServer)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(generalRateLimit(deps.Security))

		r.Route("/auth", func(r chi.Router) {
			r.With(registerRateLimit(deps.Security)).Post("/register", deps.Auth.Register)
			r.With(loginRateLimit(deps.Security)).Post("/login", deps.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMW.RequireAuth)
				r.Post("/logout", deps.Auth.Logout)
				r.Get("/me", deps.Auth.Me)
			})
		})

		r.Route("/movies", func(r chi.Router) {
			r.Use(deps.AuthMW.RequireAuth)
			r.Get("/search", deps.Movies.Search)
			r.Get("/filter", deps.Movies.Filter)
			r.Get("/facets", deps.Movies.Facets)
			r.Post("/similar-text", deps.Movies.SimilarText)
			r.Get("/{movieID}", deps.Movies.GetByID)
			r.Get("/{movieID}/similar", deps.Movies.Similar)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Use(deps.AuthMW.RequireAuth)
			r.Get("/", deps.Watchlist.List)
			r.Get("/ids", deps.Watchlist.ListIDs)
			r.Post("/{movieID}", deps.Watchlist.Add)
			r.Delete("/{movieID}", deps.Watchlist.Remove)
		})
	})

	return r
}
