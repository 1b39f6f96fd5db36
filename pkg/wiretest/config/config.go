// Package config loads run settings for the correlation layer.
//
// Settings come from YAML or JSON files, or from plain maps, with
// every field defaulted so an empty document is a valid
// configuration. Timeouts and poll intervals are configuration
// inputs, never hardcoded at call sites.
package config

import (
	"fmt"
	"time"
)

// Store kinds accepted by Settings.Store.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Settings holds the tunables of the correlation layer.
type Settings struct {
	// AwaitTimeout bounds how long a receive waits for its reply.
	AwaitTimeout time.Duration

	// PollInterval is how often an await re-checks the store.
	PollInterval time.Duration

	// CorrelationHeader is the message header correlation keys are
	// derived from. Empty means the message ID header.
	CorrelationHeader string

	// Store selects the correlation store backend: StoreMemory or
	// StoreSQLite.
	Store string

	// StorePath is the database path for the sqlite backend.
	StorePath string
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		AwaitTimeout: 5 * time.Second,
		PollInterval: 500 * time.Millisecond,
		Store:        StoreMemory,
		StorePath:    "./exchanges.db",
	}
}

// FromMap builds Settings from a decoded configuration map, applying
// defaults for missing keys. Unknown keys are ignored.
func FromMap(data map[string]any) (Settings, error) {
	s := Default()
	if data == nil {
		return s, nil
	}

	var err error
	if s.AwaitTimeout, err = durationValue(data, "await_timeout", s.AwaitTimeout); err != nil {
		return Settings{}, err
	}
	if s.PollInterval, err = durationValue(data, "poll_interval", s.PollInterval); err != nil {
		return Settings{}, err
	}
	s.CorrelationHeader = stringValue(data, "correlation_header", s.CorrelationHeader)
	s.Store = stringValue(data, "store", s.Store)
	s.StorePath = stringValue(data, "store_path", s.StorePath)

	if s.Store != StoreMemory && s.Store != StoreSQLite {
		return Settings{}, fmt.Errorf("unknown store kind %q", s.Store)
	}
	if s.AwaitTimeout <= 0 {
		return Settings{}, fmt.Errorf("await_timeout must be positive, got %s", s.AwaitTimeout)
	}
	if s.PollInterval <= 0 {
		return Settings{}, fmt.Errorf("poll_interval must be positive, got %s", s.PollInterval)
	}
	return s, nil
}

// stringValue returns the string at key, or defaultVal if missing or
// not a string.
func stringValue(data map[string]any, key, defaultVal string) string {
	v, ok := data[key]
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// durationValue returns the duration at key.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int / int64 / float64: interpreted as seconds
func durationValue(data map[string]any, key string, defaultVal time.Duration) (time.Duration, error) {
	v, ok := data[key]
	if !ok {
		return defaultVal, nil
	}
	switch val := v.(type) {
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case int64:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%s: unsupported value %v", key, v)
	}
}
