// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the CareLink
// client. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, an optional JSON
// file, and built-in defaults (first non-zero value wins, defaults last).
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Backend holds the REST backend endpoint and retry settings.
	Backend Backend `envPrefix:"BACKEND_"`

	// Auth holds session refresh settings.
	Auth Auth `envPrefix:"AUTH_"`

	// Storage holds the local durable store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds offline queue replay settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Network holds connectivity watcher settings.
	Network Network `envPrefix:"NETWORK_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged after env and flags.
	// Populated via the CONFIG environment variable or the -c/-config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Backend configures outbound communication with the CareLink backend.
type Backend struct {
	// BaseURL is the backend root, e.g. "https://api.carelink.example".
	// Request paths are always relative to it.
	// Env: BACKEND_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the per-attempt HTTP timeout.
	// Env: BACKEND_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// MaxRetries is how many times a request is retried after a network
	// error or 5xx response. 4xx responses are never retried.
	// Env: BACKEND_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// RetryDelay is the base backoff delay; attempt n waits
	// RetryDelay * 2^(n-1).
	// Env: BACKEND_RETRY_DELAY
	RetryDelay time.Duration `env:"RETRY_DELAY"`
}

// Auth configures the token refresh fallback path.
type Auth struct {
	// RefreshTimeout bounds the session refresh call made when no valid
	// cached token exists. On expiry the request proceeds
	// unauthenticated.
	// Env: AUTH_REFRESH_TIMEOUT
	RefreshTimeout time.Duration `env:"REFRESH_TIMEOUT"`
}

// Storage groups local persistence settings.
type Storage struct {
	// DB holds the local SQLite database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds the local database connection settings.
type DB struct {
	// DSN is the SQLite file path backing the offline queue and the
	// cached session.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Sync configures offline queue replay.
type Sync struct {
	// MaxItemRetries is the per-item rejection bound; items past it are
	// excluded from batches and reported as stuck instead of retrying
	// forever silently.
	// Env: SYNC_MAX_ITEM_RETRIES
	MaxItemRetries int `env:"MAX_ITEM_RETRIES"`

	// FlushInterval is the periodic background flush cadence, in
	// addition to connectivity-triggered flushes.
	// Env: SYNC_FLUSH_INTERVAL
	FlushInterval time.Duration `env:"FLUSH_INTERVAL"`
}

// Network configures connectivity detection.
type Network struct {
	// ProbeURL is the lightweight endpoint polled to detect
	// connectivity; defaults to "<BaseURL>/health" when empty.
	// Env: NETWORK_PROBE_URL
	ProbeURL string `env:"PROBE_URL"`

	// ProbeInterval is how often connectivity is checked.
	// Env: NETWORK_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// DebounceSettle is how long a restored connection must hold before
	// an offline-to-online transition is reported. Rapid flapping inside
	// the window produces at most one notification.
	// Env: NETWORK_DEBOUNCE_SETTLE
	DebounceSettle time.Duration `env:"DEBOUNCE_SETTLE"`
}

// GetStructuredConfig loads, merges, and validates the client configuration
// from all available sources in the following priority order (first
// non-zero value wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
