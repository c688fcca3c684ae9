// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package config

// validate checks that the final merged [StructuredConfig] satisfies the
// client's startup invariants. Defaults are merged before validation runs,
// so a failure here means a source supplied an explicitly bad value.
func (cfg *StructuredConfig) validate() error {
	if cfg.Backend.BaseURL == "" || cfg.Backend.MaxRetries < 0 || cfg.Backend.RetryDelay <= 0 {
		return ErrInvalidBackendConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Sync.MaxItemRetries <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Network.ProbeInterval <= 0 || cfg.Network.DebounceSettle <= 0 {
		return ErrInvalidNetworkConfigs
	}

	return nil
}
