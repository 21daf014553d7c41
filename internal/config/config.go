// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

// Package config loads eduaccess configuration from an optional YAML file
// overlaid with command-line flags and the DATABASE_URL environment
// variable. Flag values win over file values; the environment is the
// fallback for the database URL only.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/eduaccess/eduaccess/internal/xdg"
)

// Config holds the runtime configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string for the credential
	// store.
	DatabaseURL string

	// LogFormat is "json" or "text".
	LogFormat string

	// MetricsAddr is the optional listen address for the metrics/health
	// HTTP endpoint. Empty disables it.
	MetricsAddr string
}

// Keys used in the config file and as flag names.
const (
	KeyDatabaseURL = "database-url"
	KeyLogFormat   = "log-format"
	KeyMetricsAddr = "metrics-addr"
)

// Load builds the configuration. path may be empty, in which case the
// XDG config file is used when present; flags may be nil (no flag
// overlay).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		candidate := filepath.Join(xdg.ConfigDir(), "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		DatabaseURL: k.String(KeyDatabaseURL),
		LogFormat:   k.String(KeyLogFormat),
		MetricsAddr: k.String(KeyMetricsAddr),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database URL is required (set %s or DATABASE_URL)", KeyDatabaseURL)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			Errorf("log format must be 'json' or 'text', got %q", c.LogFormat)
	}
	return nil
}
