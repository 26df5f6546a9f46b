package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
)

// isolate points the user config at an empty temp dir and clears NEXUS_* vars.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"NEXUS_MAX_RESULTS", "NEXUS_FUZZY", "NEXUS_DEBOUNCE_MS", "NEXUS_HOTKEY", "NEXUS_LOG_LEVEL", "NEXUS_EXCLUDE"} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Alt+Space", cfg.Hotkey.Binding)
	assert.Equal(t, 6, cfg.Search.MaxResults)
	assert.True(t, cfg.Search.Fuzzy)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, 3, cfg.Index.MaxDepth)
	assert.True(t, cfg.Index.SystemActions)
	assert.Contains(t, cfg.Index.Exclude, "node_modules/")
	assert.Equal(t, 5*time.Second, cfg.StallTimeout())
	assert.Equal(t, 3, cfg.Watchdog.MaxRestarts)
	assert.Equal(t, time.Minute, cfg.RestartWindow())
	assert.False(t, cfg.Startup.ShowOnStartup)
	assert.NotEmpty(t, cfg.Index.AppDirs)
}

func TestDefaultAppDirs_IncludeDesktopAtDepthOne(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		dirs := defaultAppDirs(goos)
		last := dirs[len(dirs)-1]
		assert.Equal(t, "Desktop", filepath.Base(last.Path), goos)
		assert.Equal(t, 1, last.MaxDepth, goos)
	}
}

func TestGetUserConfigPath_FollowsXDG(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, filepath.Join(dir, "nexus", "config.yaml"), GetUserConfigPath())
	assert.False(t, UserConfigExists())
}

func TestLoad_Layers(t *testing.T) {
	// Given: a user file, an explicit file and an env override
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "nexus", "config.yaml"), `
search:
  max_results: 8
  fuzzy: false
hotkey:
  binding: Ctrl+Space
`)
	explicit := filepath.Join(t.TempDir(), "override.yaml")
	writeFile(t, explicit, `
search:
  max_results: 9
index:
  exclude: ["*.iso"]
`)
	t.Setenv("NEXUS_DEBOUNCE_MS", "20")
	t.Setenv("NEXUS_EXCLUDE", "build/, dist/")

	// When
	cfg, err := Load(explicit)

	// Then: later layers win field by field
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Search.MaxResults)
	assert.False(t, cfg.Search.Fuzzy, "false from the user file is kept")
	assert.Equal(t, "Ctrl+Space", cfg.Hotkey.Binding)
	assert.Equal(t, 20, cfg.Search.DebounceMS)
	assert.Equal(t, []string{"*.iso", "build/", "dist/"}, cfg.Index.Exclude)
	assert.Equal(t, "30s", cfg.Search.CacheTTL, "untouched defaults survive")
	assert.Equal(t, []string{filepath.Join(dir, "nexus", "config.yaml"), explicit}, Files(explicit))
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("NEXUS_MAX_RESULTS", "3")
	t.Setenv("NEXUS_FUZZY", "false")
	t.Setenv("NEXUS_HOTKEY", "super+k")
	t.Setenv("NEXUS_LOG_LEVEL", "debug")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.False(t, cfg.Search.Fuzzy)
	assert.Equal(t, "super+k", cfg.Hotkey.Binding)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MalformedEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("NEXUS_MAX_RESULTS", "lots")
	t.Setenv("NEXUS_FUZZY", "maybe")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Search.MaxResults)
	assert.True(t, cfg.Search.Fuzzy)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"syntax", "search: [", nxerrors.ErrCodeConfigInvalid},
		{"unknown key", "serach:\n  max_results: 4\n", nxerrors.ErrCodeConfigInvalid},
		{"out of range", "search:\n  max_results: 0\n", nxerrors.ErrCodeConfigInvalid},
		{"bad hotkey", "hotkey:\n  binding: Alt+Banana\n", nxerrors.ErrCodeConfigInvalid},
		{"bad duration", "watchdog:\n  stall_timeout: soon\n", nxerrors.ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, path, tt.content)

			_, err := Load(path)

			require.Error(t, err)
			assert.Equal(t, tt.code, nxerrors.GetCode(err))
		})
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Equal(t, nxerrors.ErrCodeConfigNotFound, nxerrors.GetCode(err))
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "empty.yaml")
	writeFile(t, path, "")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, NewConfig().Search, cfg.Search)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"debounce too large", func(c *Config) { c.Search.DebounceMS = 5000 }, "debounce_ms"},
		{"zero cache", func(c *Config) { c.Search.CacheSize = 0 }, "cache_size"},
		{"negative depth", func(c *Config) { c.Index.MaxDepth = -1 }, "max_depth"},
		{"negative restarts", func(c *Config) { c.Watchdog.MaxRestarts = -1 }, "max_restarts"},
		{"zero stall timeout", func(c *Config) { c.Watchdog.StallTimeout = "0s" }, "stall_timeout"},
		{"bad fallback", func(c *Config) { c.Hotkey.Fallback = "Ctrl+" }, "hotkey.fallback"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("refresh disabled", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Index.RefreshInterval = "0s"
		require.NoError(t, cfg.Validate())
		assert.Equal(t, time.Duration(0), cfg.RefreshInterval())
	})
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	isolate(t)
	cfg := NewConfig()
	cfg.Search.MaxResults = 10
	cfg.Startup.ShowOnStartup = true
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	require.NoError(t, cfg.WriteYAML(path))
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMergeNewDefaults(t *testing.T) {
	cfg := NewConfig()
	cfg.Search.CacheTTL = ""
	cfg.Watchdog = WatchdogConfig{}

	added := cfg.MergeNewDefaults()

	assert.Equal(t, []string{"search.cache_ttl", "watchdog"}, added)
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.MergeNewDefaults())
}

func TestMergeNewDefaults_MissingSections(t *testing.T) {
	// Given: a file that only sets the hotkey
	cfg := &Config{Hotkey: HotkeyConfig{Binding: "Ctrl+Space"}}

	// When: merging
	added := cfg.MergeNewDefaults()

	// Then: whole sections are filled, the binding is kept and it validates
	assert.Contains(t, added, "search")
	assert.Contains(t, added, "watchdog")
	assert.Contains(t, added, "index.app_dirs")
	assert.Equal(t, "Ctrl+Space", cfg.Hotkey.Binding)
	assert.Equal(t, 6, cfg.Search.MaxResults)
	require.NoError(t, cfg.Validate())
}

func TestResolveDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("NEXUS_TEST_DIR", "/srv/apps")

	assert.Equal(t, filepath.Join(home, "Desktop"), ResolveDir("~/Desktop"))
	assert.Equal(t, "/srv/apps/bin", ResolveDir("$NEXUS_TEST_DIR/bin/"))
	assert.Equal(t, "/opt", ResolveDir("/opt/../opt"))
}
