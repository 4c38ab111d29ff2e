package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout.Duration())
	assert.False(t, cfg.API.RequireQuery)
	assert.Equal(t, 30, cfg.Filter.Limit)
	assert.Equal(t, "desc", cfg.Sort.Order)
	assert.Equal(t, 500*time.Millisecond, cfg.Refresh.Debounce.Duration())
	assert.Equal(t, "v13", cfg.Storage.Namespace)
	assert.True(t, cfg.TUI.ShowHelp)
	assert.NotEmpty(t, cfg.Templates.Dmenu)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API.BaseURL, cfg.API.BaseURL)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[api]
base_url = "https://deals.example.com/api"
timeout = "5s"
require_query = true

[filter]
query = "ring"
min_score = 50
min_margin = 2.5
limit = 100

[sort]
field = "margin"
order = "asc"

[refresh]
debounce = "350"

[storage]
namespace = "v14"
data_dir = "/tmp/dealwatch-test"

[templates]
dmenu = "{{.Deal.Name}}"

[templates.custom]
short = "{{.Deal.Key}}"

[tui]
show_help = false

[clipboard]
command = "xclip"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://deals.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout.Duration())
	assert.True(t, cfg.API.RequireQuery)
	assert.Equal(t, "ring", cfg.Filter.Query)
	assert.InDelta(t, 50.0, cfg.Filter.MinScore, 0.001)
	assert.InDelta(t, 2.5, cfg.Filter.MinMargin, 0.001)
	assert.Equal(t, 100, cfg.Filter.Limit)
	assert.Equal(t, "margin", cfg.Sort.Field)
	assert.Equal(t, "asc", cfg.Sort.Order)
	assert.Equal(t, 350*time.Millisecond, cfg.Refresh.Debounce.Duration())
	assert.Equal(t, "v14", cfg.Storage.Namespace)
	assert.Equal(t, "/tmp/dealwatch-test", cfg.DataDir())
	assert.Equal(t, "{{.Deal.Name}}", cfg.Templates.Dmenu)
	assert.Equal(t, "{{.Deal.Key}}", cfg.GetTemplate("short"))
	assert.False(t, cfg.TUI.ShowHelp)
	assert.Equal(t, "xclip", cfg.Clipboard.Command)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[filter]
min_score = 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, cfg.Filter.MinScore, 0.001)

	// Unchanged fields keep defaults
	assert.Equal(t, 30, cfg.Filter.Limit)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.True(t, cfg.TUI.ShowHelp)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad base url", "[api]\nbase_url = \"ftp://example.com\""},
		{"relative base url", "[api]\nbase_url = \"/deals\""},
		{"bad duration", "[refresh]\ndebounce = \"soon\""},
		{"zero debounce", "[refresh]\ndebounce = \"0s\""},
		{"negative limit", "[filter]\nlimit = -1"},
		{"bad namespace", "[storage]\nnamespace = \"../x\""},
		{"bad order", "[sort]\norder = \"sideways\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://deals.example.com"
	cfg.Refresh.Debounce = Duration(400 * time.Millisecond)
	cfg.Templates.Custom["test"] = "custom template"

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://deals.example.com", loaded.API.BaseURL)
	assert.Equal(t, 400*time.Millisecond, loaded.Refresh.Debounce.Duration())
	assert.Equal(t, "custom template", loaded.Templates.Custom["test"])
}

func TestConfig_GetTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Templates.Custom["mytemplate"] = "custom: {{.Deal.Name}}"

	tests := []struct {
		name     string
		expected string
	}{
		{"dmenu", cfg.Templates.Dmenu},
		{"plain", cfg.Templates.Plain},
		{"mytemplate", "custom: {{.Deal.Name}}"},
		{"nonexistent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.GetTemplate(tt.name))
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"500ms", 500 * time.Millisecond, false},
		{"10s", 10 * time.Second, false},
		{"1m", time.Minute, false},
		{"350", 350 * time.Millisecond, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/dealwatch/config.toml", ConfigPath())
}

func TestDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/dealwatch", DataPath())

	cfg := DefaultConfig()
	assert.Equal(t, "/custom/data/dealwatch", cfg.DataDir())
	assert.Equal(t, "/custom/data/dealwatch/dealwatch.log", cfg.LogPath())
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Storage.DataDir = filepath.Join(dir, "nested", "data")
	require.NoError(t, cfg.EnsureDataDir())

	info, err := os.Stat(cfg.Storage.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
