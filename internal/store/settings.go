package store

import (
	"github.com/jmylchreest/dealwatch/internal/model"
)

// SettingsStore holds the refresh settings and persists them on explicit save.
type SettingsStore struct {
	kv       KV
	key      string
	settings model.Settings
}

// NewSettingsStore loads settings from kv, falling back to defaults.
func NewSettingsStore(kv KV, namespace string) *SettingsStore {
	s := &SettingsStore{
		kv:  kv,
		key: SettingsKey(namespace),
	}
	s.Reload()
	return s
}

// Get returns the current settings.
func (s *SettingsStore) Get() model.Settings {
	return s.settings
}

// Set applies a partial update, clamps the interval and persists the result.
// The in-memory settings are updated even if persisting fails.
func (s *SettingsStore) Set(u model.SettingsUpdate) (model.Settings, error) {
	s.settings = u.Apply(s.settings)
	return s.settings, SaveJSON(s.kv, s.key, s.settings)
}

// Reload re-reads the settings from storage.
func (s *SettingsStore) Reload() model.Settings {
	s.settings = LoadJSON(s.kv, s.key, model.DefaultSettings())
	return s.settings
}

// Key returns the storage key used for the settings.
func (s *SettingsStore) Key() string {
	return s.key
}
