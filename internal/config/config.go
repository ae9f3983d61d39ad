// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package config defines the Kinograph configuration model and its layered
// loading (defaults, optional YAML file, environment variables).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Dataset  DatasetConfig  `koanf:"dataset"`
	Vector   VectorConfig   `koanf:"vector"`
	Security SecurityConfig `koanf:"security"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatasetConfig locates the processed movie dataset and poster assets.
type DatasetConfig struct {
	// Path is the processed movie CSV.
	Path string `koanf:"path"`
	// StaticDir is served under /static/ for locally stored posters.
	StaticDir string `koanf:"static_dir"`
}

// VectorConfig configures the similarity stack: an OpenAI-compatible
// embeddings endpoint plus a Qdrant collection.
type VectorConfig struct {
	Enabled           bool          `koanf:"enabled"`
	EmbeddingURL      string        `koanf:"embedding_url"`
	EmbeddingAPIKey   string        `koanf:"embedding_api_key"`
	EmbeddingModel    string        `koanf:"embedding_model"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	MaxRetries        int           `koanf:"max_retries"`
	QdrantURL         string        `koanf:"qdrant_url"`
	QdrantAPIKey      string        `koanf:"qdrant_api_key"`
	Collection        string        `koanf:"collection"`
	Timeout           time.Duration `koanf:"timeout"`
}

// SecurityConfig configures sessions, rate limiting and CORS.
type SecurityConfig struct {
	// DataDir is the BadgerDB directory for users, watchlists and
	// persistent sessions.
	DataDir string `koanf:"data_dir"`
	// SessionBackend selects the session store: memory or badger.
	SessionBackend         string        `koanf:"session_backend"`
	SessionTTL             time.Duration `koanf:"session_ttl"`
	SessionCleanupInterval time.Duration `koanf:"session_cleanup_interval"`
	RateLimitEnabled       bool          `koanf:"rate_limit_enabled"`
	RateLimitRequests      int           `koanf:"rate_limit_requests"`
	RateLimitWindow        time.Duration `koanf:"rate_limit_window"`
	CORSOrigins            []string      `koanf:"cors_origins"`
}

// APIConfig bounds pagination and similarity fan-out.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	DefaultSimilar  int `koanf:"default_similar"`
	MaxSimilar      int `koanf:"max_similar"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks cross-field constraints after loading.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path must be set")
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("api.default_page_size must be in 1..%d, got %d",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.DefaultSimilar < 1 || c.API.DefaultSimilar > c.API.MaxSimilar {
		return fmt.Errorf("api.default_similar must be in 1..%d, got %d",
			c.API.MaxSimilar, c.API.DefaultSimilar)
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.session_ttl must be positive")
	}
	switch c.Security.SessionBackend {
	case "memory", "badger":
	default:
		return fmt.Errorf("security.session_backend must be memory or badger, got %q",
			c.Security.SessionBackend)
	}
	if c.Vector.Enabled {
		if c.Vector.EmbeddingURL == "" || c.Vector.QdrantURL == "" || c.Vector.Collection == "" {
			return fmt.Errorf("vector.embedding_url, vector.qdrant_url and vector.collection must be set when vector.enabled")
		}
	}
	return nil
}

// defaultConfig returns the built-in defaults, overridable by file and env.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Dataset: DatasetConfig{
			Path:      "data/movies.csv",
			StaticDir: "data",
		},
		Vector: VectorConfig{
			Enabled:           true,
			EmbeddingURL:      "http://localhost:11434/v1",
			EmbeddingModel:    "nomic-embed-text",
			RequestsPerSecond: 5,
			MaxRetries:        2,
			QdrantURL:         "http://localhost:6333",
			Collection:        "movies",
			Timeout:           10 * time.Second,
		},
		Security: SecurityConfig{
			DataDir:                "data/kinograph-db",
			SessionBackend:         "badger",
			SessionTTL:             24 * time.Hour,
			SessionCleanupInterval: 10 * time.Minute,
			RateLimitEnabled:       true,
			RateLimitRequests:      100,
			RateLimitWindow:        time.Minute,
			CORSOrigins:            []string{"http://localhost:5173"},
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			DefaultSimilar:  10,
			MaxSimilar:      50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
