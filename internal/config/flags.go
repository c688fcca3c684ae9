package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-base-url backend root URL
//	-request-timeout per-attempt HTTP timeout (e.g. "15s")
//	-max-retries retry cap for transient failures
//	-retry-delay base backoff delay (e.g. "1s")
//	-refresh-timeout session refresh timeout (e.g. "2s")
//	-d local SQLite database path
//	-max-item-retries stuck bound for queued operations
//	-flush-interval periodic background flush cadence
//	-probe-url connectivity probe endpoint
//	-probe-interval connectivity probe cadence
//	-debounce-settle settle period for online transitions
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var baseURL string
	var requestTimeout time.Duration
	var maxRetries int
	var retryDelay time.Duration
	var refreshTimeout time.Duration
	var databaseDSN string
	var maxItemRetries int
	var flushInterval time.Duration
	var probeURL string
	var probeInterval time.Duration
	var debounceSettle time.Duration
	var jsonConfigPath string

	flag.StringVar(&baseURL, "base-url", "", "Backend base URL")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Per-attempt request timeout (e.g. 15s)")
	flag.IntVar(&maxRetries, "max-retries", 0, "Retry cap for transient failures")
	flag.DurationVar(&retryDelay, "retry-delay", 0, "Base retry backoff delay (e.g. 1s)")
	flag.DurationVar(&refreshTimeout, "refresh-timeout", 0, "Session refresh timeout (e.g. 2s)")
	flag.StringVar(&databaseDSN, "d", "", "Local database path")
	flag.IntVar(&maxItemRetries, "max-item-retries", 0, "Stuck bound for queued operations")
	flag.DurationVar(&flushInterval, "flush-interval", 0, "Periodic flush cadence (e.g. 5m)")
	flag.StringVar(&probeURL, "probe-url", "", "Connectivity probe URL")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe cadence (e.g. 30s)")
	flag.DurationVar(&debounceSettle, "debounce-settle", 0, "Settle period for online transitions (e.g. 3s)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Backend: Backend{
			BaseURL:        baseURL,
			RequestTimeout: requestTimeout,
			MaxRetries:     maxRetries,
			RetryDelay:     retryDelay,
		},
		Auth: Auth{
			RefreshTimeout: refreshTimeout,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Sync: Sync{
			MaxItemRetries: maxItemRetries,
			FlushInterval:  flushInterval,
		},
		Network: Network{
			ProbeURL:       probeURL,
			ProbeInterval:  probeInterval,
			DebounceSettle: debounceSettle,
		},
		JSONFilePath: jsonConfigPath,
	}
}
