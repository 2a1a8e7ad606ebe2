// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package config loads server configuration from an optional YAML file
// layered under command-line flags.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Session store backends.
const (
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

// Config holds the serve command configuration.
// Keys match flag names; the YAML file uses the same keys.
type Config struct {
	ListenAddr  string        `koanf:"listen-addr"`
	MetricsAddr string        `koanf:"metrics-addr"`
	DatabaseURL string        `koanf:"database-url"`
	LogFormat   string        `koanf:"log-format"`
	SessionTTL  time.Duration `koanf:"session-ttl"`

	// SessionStore selects where session state lives: "postgres" (shared,
	// survives restarts) or "memory" (per-process map).
	SessionStore string `koanf:"session-store"`
}

// Load builds a Config from the optional YAML file at path, then the flag
// set. Explicitly set flags win over the file; flag defaults fill the rest.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

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

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen-addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.SessionStore != SessionStorePostgres && c.SessionStore != SessionStoreMemory {
		return oops.Code("CONFIG_INVALID").Errorf("session-store must be 'postgres' or 'memory', got %q", c.SessionStore)
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database-url is required")
	}
	if c.SessionTTL < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session-ttl cannot be negative")
	}
	return nil
}
