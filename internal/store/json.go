package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
)

// DefaultNamespace is the versioned suffix applied to persistence keys.
const DefaultNamespace = "v13"

// SettingsKey returns the settings key for a namespace, e.g. "settings_v13".
func SettingsKey(ns string) string {
	return "settings_" + ns
}

// WatchlistKey returns the watchlist key for a namespace, e.g. "watch_v13".
func WatchlistKey(ns string) string {
	return "watch_" + ns
}

// LoadJSON decodes the value stored under key on top of fallback, so object
// fields missing from the stored value keep their fallback values.
// A missing key, empty value, malformed JSON, stored null or read failure all
// yield fallback. Corrupt state is never surfaced to the caller.
// Map and pointer fallbacks are decoded into, not copied.
func LoadJSON[T any](kv KV, key string, fallback T) T {
	raw, ok, err := kv.Get(key)
	if err != nil {
		slog.Debug("failed to read stored value, using default", "key", key, "error", err)
		return fallback
	}
	if !ok {
		return fallback
	}

	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fallback
	}

	v := fallback
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Debug("stored value is corrupt, using default", "key", key, "error", err)
		return fallback
	}
	return v
}

// SaveJSON encodes value and stores it under key. Storage faults are returned.
func SaveJSON(kv KV, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
