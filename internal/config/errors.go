package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidBackendConfigs indicates invalid backend settings
	// (for example, missing base URL or a negative retry cap).
	ErrInvalidBackendConfigs = errors.New("invalid backend configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, an empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates invalid queue replay settings.
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidNetworkConfigs indicates invalid connectivity watcher
	// settings (for example, a zero probe interval).
	ErrInvalidNetworkConfigs = errors.New("invalid network configuration")
)
