package model

// MinIntervalSec is the floor applied to the auto-refresh interval.
const MinIntervalSec = 5

// DefaultIntervalSec is the auto-refresh interval used when nothing is stored.
const DefaultIntervalSec = 30

// Settings holds the user's refresh preferences.
type Settings struct {
	AutoRefresh bool `json:"autoRefresh" yaml:"autoRefresh" toml:"auto_refresh"`
	IntervalSec int  `json:"intervalSec" yaml:"intervalSec" toml:"interval_sec"`
}

// DefaultSettings returns the settings used on first start.
func DefaultSettings() Settings {
	return Settings{
		AutoRefresh: false,
		IntervalSec: DefaultIntervalSec,
	}
}

// Clamp returns a copy with IntervalSec raised to MinIntervalSec if needed.
func (s Settings) Clamp() Settings {
	s.IntervalSec = ClampInterval(s.IntervalSec)
	return s
}

// ClampInterval raises sec to MinIntervalSec if it is lower.
func ClampInterval(sec int) int {
	return max(MinIntervalSec, sec)
}

// SettingsUpdate is a partial settings change. Nil fields are left untouched.
type SettingsUpdate struct {
	AutoRefresh *bool
	IntervalSec *int
}

// Apply returns s with the non-nil fields of u applied and the interval clamped.
func (u SettingsUpdate) Apply(s Settings) Settings {
	if u.AutoRefresh != nil {
		s.AutoRefresh = *u.AutoRefresh
	}
	if u.IntervalSec != nil {
		s.IntervalSec = *u.IntervalSec
	}
	return s.Clamp()
}
