package config

import (
	"fmt"
	"strings"
	"time"
)

// ClientAdapter holds the settings consumed by the backend adapter.
type ClientAdapter struct {
	// BaseURL is the backend root URL.
	BaseURL string
	// RequestTimeout is the per-attempt HTTP timeout.
	RequestTimeout time.Duration
	// MaxRetries is the transient-failure retry cap.
	MaxRetries int
	// RetryDelay is the base exponential backoff delay.
	RetryDelay time.Duration
}

// ClientSession holds the settings consumed by the session manager.
type ClientSession struct {
	// RefreshTimeout bounds the refresh fallback call.
	RefreshTimeout time.Duration
}

// ClientDB contains local database settings.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientStorage groups local storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientSync contains offline queue replay settings.
type ClientSync struct {
	// MaxItemRetries is the stuck bound for queued operations.
	MaxItemRetries int
	// FlushInterval is the periodic background flush cadence.
	FlushInterval time.Duration
}

// ClientNetwork contains connectivity watcher settings.
type ClientNetwork struct {
	// ProbeURL is the connectivity probe endpoint.
	ProbeURL string
	// ProbeInterval is the probe cadence.
	ProbeInterval time.Duration
	// DebounceSettle is the settle period for online transitions.
	DebounceSettle time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Adapter contains backend transport settings.
	Adapter ClientAdapter
	// Session contains token refresh settings.
	Session ClientSession
	// Storage contains local storage settings.
	Storage ClientStorage
	// Sync contains queue replay settings.
	Sync ClientSync
	// Network contains connectivity watcher settings.
	Network ClientNetwork
}

// GetClientConfig builds and validates the client configuration view from
// the merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps the fields
// relevant to the client runtime, and derives the probe URL from the
// backend base URL when no explicit probe endpoint is configured.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	probeURL := cfg.Network.ProbeURL
	if probeURL == "" {
		probeURL = strings.TrimRight(cfg.Backend.BaseURL, "/") + "/health"
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			BaseURL:        cfg.Backend.BaseURL,
			RequestTimeout: cfg.Backend.RequestTimeout,
			MaxRetries:     cfg.Backend.MaxRetries,
			RetryDelay:     cfg.Backend.RetryDelay,
		},
		Session: ClientSession{
			RefreshTimeout: cfg.Auth.RefreshTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Sync: ClientSync{
			MaxItemRetries: cfg.Sync.MaxItemRetries,
			FlushInterval:  cfg.Sync.FlushInterval,
		},
		Network: ClientNetwork{
			ProbeURL:       probeURL,
			ProbeInterval:  cfg.Network.ProbeInterval,
			DebounceSettle: cfg.Network.DebounceSettle,
		},
	}

	return clientCfg, nil
}
