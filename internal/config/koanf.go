// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an explicit config file, bypassing discovery.
const ConfigPathEnvVar = "KINOGRAPH_CONFIG"

// DefaultConfigPaths are searched in order when no explicit path is set.
var DefaultConfigPaths = []string{
	"kinograph.yaml",
	"config/kinograph.yaml",
	"/etc/kinograph/kinograph.yaml",
}

// Load builds the configuration from three layers, later layers winning:
//  1. built-in defaults
//  2. optional YAML config file
//  3. environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	// Env vars arrive as strings; split known slice fields on commas.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - KINOGRAPH_SERVER_PORT    -> server.port
//   - KINOGRAPH_DATASET_PATH   -> dataset.path
//   - KINOGRAPH_VECTOR_ENABLED -> vector.enabled
//
// Variables outside the KINOGRAPH_ namespace are ignored so unrelated
// environment noise cannot leak into the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	const prefix = "kinograph_"
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	key = strings.TrimPrefix(key, prefix)

	// Section names contain no underscores, so the first underscore splits
	// section from field; field names keep theirs (e.g. static_dir).
	section, field, found := strings.Cut(key, "_")
	if !found || field == "" {
		return ""
	}
	switch section {
	case "server", "dataset", "vector", "security", "api", "logging":
		return section + "." + field
	default:
		return ""
	}
}
