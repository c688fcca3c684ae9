package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations for file-based configuration.
type StructuredJSONConfig struct {
	Backend struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
		MaxRetries     int      `json:"max_retries"`
		RetryDelay     Duration `json:"retry_delay"`
	} `json:"backend,omitempty"`

	Auth struct {
		RefreshTimeout Duration `json:"refresh_timeout"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		MaxItemRetries int      `json:"max_item_retries"`
		FlushInterval  Duration `json:"flush_interval"`
	} `json:"sync,omitempty"`

	Network struct {
		ProbeURL       string   `json:"probe_url"`
		ProbeInterval  Duration `json:"probe_interval"`
		DebounceSettle Duration `json:"debounce_settle"`
	} `json:"network,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Backend: Backend{
			BaseURL:        jsonCfg.Backend.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Backend.RequestTimeout),
			MaxRetries:     jsonCfg.Backend.MaxRetries,
			RetryDelay:     time.Duration(jsonCfg.Backend.RetryDelay),
		},
		Auth: Auth{
			RefreshTimeout: time.Duration(jsonCfg.Auth.RefreshTimeout),
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Sync: Sync{
			MaxItemRetries: jsonCfg.Sync.MaxItemRetries,
			FlushInterval:  time.Duration(jsonCfg.Sync.FlushInterval),
		},
		Network: Network{
			ProbeURL:       jsonCfg.Network.ProbeURL,
			ProbeInterval:  time.Duration(jsonCfg.Network.ProbeInterval),
			DebounceSettle: time.Duration(jsonCfg.Network.DebounceSettle),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
