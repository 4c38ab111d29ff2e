// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultTimeout   = 15 * time.Second
	DefaultDebounce  = 500 * time.Millisecond
	DefaultNamespace = "v13"
	DefaultLimit     = 30
	DefaultDmenuTmpl = "{{.Index}} | {{.Row.Name}} | {{.Row.Price}} | {{.Row.Margin}} | {{.Deal.Key}}"
	DefaultPlainTmpl = ""
)

// Config represents the dealwatch configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Filter    FilterConfig    `toml:"filter"`
	Sort      SortConfig      `toml:"sort"`
	Refresh   RefreshConfig   `toml:"refresh"`
	Storage   StorageConfig   `toml:"storage"`
	Templates TemplatesConfig `toml:"templates"`
	TUI       TUIConfig       `toml:"tui"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// APIConfig configures the deals API. The base URL is process-wide and
// cannot be changed while running.
type APIConfig struct {
	BaseURL      string   `toml:"base_url"`
	Timeout      Duration `toml:"timeout"`       // Per-request timeout
	RequireQuery bool     `toml:"require_query"` // Send the query as item= and reject empty queries
	UserAgent    string   `toml:"user_agent"`
}

// FilterConfig holds the initial filter criteria.
type FilterConfig struct {
	Query     string  `toml:"query"`
	MinScore  float64 `toml:"min_score"`
	MinMargin float64 `toml:"min_margin"`
	Limit     int     `toml:"limit"` // Requested from the API (0 = 30)
}

// SortConfig holds default sorting options.
type SortConfig struct {
	Field string `toml:"field"` // name, price, estimate, margin, score, age (empty = feed order)
	Order string `toml:"order"` // asc, desc
}

// RefreshConfig holds fetch timing options. Auto-refresh itself is a
// persisted setting, not configuration.
type RefreshConfig struct {
	Debounce Duration `toml:"debounce"` // Quiet window for filter input
}

// StorageConfig locates persisted settings and watchlist.
type StorageConfig struct {
	Namespace string `toml:"namespace"` // Key suffix, e.g. settings_v13
	DataDir   string `toml:"data_dir"`  // Empty = XDG data dir
}

// TemplatesConfig holds output templates.
type TemplatesConfig struct {
	Dmenu  string            `toml:"dmenu"`
	Plain  string            `toml:"plain"`
	Custom map[string]string `toml:"custom"`
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp bool `toml:"show_help"`
}

// ClipboardConfig holds clipboard settings (TUI only).
type ClipboardConfig struct {
	Command string `toml:"command"` // Auto-detected if empty
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: Duration(DefaultTimeout),
		},
		Filter: FilterConfig{
			Limit: DefaultLimit,
		},
		Sort: SortConfig{
			Field: "",
			Order: "desc",
		},
		Refresh: RefreshConfig{
			Debounce: Duration(DefaultDebounce),
		},
		Storage: StorageConfig{
			Namespace: DefaultNamespace,
		},
		Templates: TemplatesConfig{
			Dmenu:  DefaultDmenuTmpl,
			Plain:  DefaultPlainTmpl,
			Custom: make(map[string]string),
		},
		TUI: TUIConfig{
			ShowHelp: true,
		},
		Clipboard: ClipboardConfig{
			Command: "", // Auto-detect
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "dealwatch", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "dealwatch")
}

// DataDir returns the configured data directory, or DataPath if unset.
func (c *Config) DataDir() string {
	if c.Storage.DataDir != "" {
		return expandPath(c.Storage.DataDir)
	}
	return DataPath()
}

// LogPath returns the TUI log file path.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir(), "dealwatch.log")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := ValidateBaseURL(c.API.BaseURL); err != nil {
		return err
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout.Duration())
	}
	if c.Refresh.Debounce <= 0 {
		return fmt.Errorf("refresh.debounce must be positive, got %s", c.Refresh.Debounce.Duration())
	}
	if c.Filter.Limit < 0 {
		return fmt.Errorf("filter.limit must not be negative, got %d", c.Filter.Limit)
	}
	if c.Storage.Namespace == "" || strings.ContainsAny(c.Storage.Namespace, `/\. `) {
		return fmt.Errorf("invalid storage.namespace %q", c.Storage.Namespace)
	}
	switch strings.ToLower(c.Sort.Order) {
	case "", "asc", "desc":
	default:
		return fmt.Errorf("invalid sort.order %q, must be asc or desc", c.Sort.Order)
	}
	return nil
}

// ValidateBaseURL checks that base is an absolute http(s) URL.
func ValidateBaseURL(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid api.base_url %q: %w", base, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: must be an http or https URL", base)
	}
	return nil
}

// GetTemplate returns the template for the given name.
// First checks custom templates, then built-in ones.
// Returns empty string if not found.
func (c *Config) GetTemplate(name string) string {
	if tmpl, ok := c.Templates.Custom[name]; ok {
		return tmpl
	}

	switch name {
	case "dmenu":
		return c.Templates.Dmenu
	case "plain":
		return c.Templates.Plain
	default:
		return ""
	}
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	path := c.DataDir()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0700)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
