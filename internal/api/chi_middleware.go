// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/kinograph/kinograph/internal/config"
)

// Rate limit presets. Login and registration get much tighter budgets than
// the general API so credential stuffing is expensive.
const (
	rateLimitLoginRequests = 5
	rateLimitLoginWindow   = 5 * time.Minute

	rateLimitRegisterRequests = 5
	rateLimitRegisterWindow   = time.Minute
)

// corsMiddleware builds the CORS policy from configured origins.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// generalRateLimit limits all API routes per client IP.
func generalRateLimit(sec config.SecurityConfig) func(http.Handler) http.Handler {
	if !sec.RateLimitEnabled {
		return passthrough
	}
	return httprate.Limit(
		sec.RateLimitRequests,
		sec.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}

// loginRateLimit guards POST /auth/login.
func loginRateLimit(sec config.SecurityConfig) func(http.Handler) http.Handler {
	if !sec.RateLimitEnabled {
		return passthrough
	}
	return httprate.Limit(
		rateLimitLoginRequests,
		rateLimitLoginWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}

// registerRateLimit guards POST /auth/register.
func registerRateLimit(sec config.SecurityConfig) func(http.Handler) http.Handler {
	if !sec.RateLimitEnabled {
		return passthrough
	}
	return httprate.Limit(
		rateLimitRegisterRequests,
		rateLimitRegisterWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}

func passthrough(next http.Handler) http.Handler {
	return next
}

// securityHeaders sets baseline security headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// staticCacheHeaders marks poster assets as long-lived; they are
// content-addressed by the dataset pipeline and never change in place.
func staticCacheHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		next.ServeHTTP(w, r)
	})
}
