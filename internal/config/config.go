// Package config loads the launcher configuration.
//
// Configuration is layered in order of increasing precedence: built-in
// defaults, the user file ($XDG_CONFIG_HOME/nexus/config.yaml), an explicit
// file passed with --config, and NEXUS_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/internal/logging"
)

// Config is the complete launcher configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Hotkey   HotkeyConfig   `yaml:"hotkey"`
	Search   SearchConfig   `yaml:"search"`
	Index    IndexConfig    `yaml:"index"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
	IPC      IPCConfig      `yaml:"ipc"`
	Logging  LoggingConfig  `yaml:"logging"`
	Startup  StartupConfig  `yaml:"startup"`
}

// HotkeyConfig holds the global activation bindings.
type HotkeyConfig struct {
	// Binding is the primary hotkey, e.g. "Alt+Space".
	Binding string `yaml:"binding"`
	// Fallback is tried when Binding cannot be registered. Empty disables it.
	Fallback string `yaml:"fallback"`
}

// SearchConfig tunes ranking and the query pipeline.
type SearchConfig struct {
	MaxResults int    `yaml:"max_results"`
	Fuzzy      bool   `yaml:"fuzzy"`
	DebounceMS int    `yaml:"debounce_ms"`
	CacheSize  int    `yaml:"cache_size"`
	CacheTTL   string `yaml:"cache_ttl"`
}

// DirConfig is one directory to index.
type DirConfig struct {
	Path string `yaml:"path"`
	// MaxDepth overrides IndexConfig.MaxDepth when positive.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// IndexConfig selects what gets indexed.
type IndexConfig struct {
	AppDirs         []DirConfig `yaml:"app_dirs"`
	FileDirs        []DirConfig `yaml:"file_dirs"`
	MaxDepth        int         `yaml:"max_depth"`
	Exclude         []string    `yaml:"exclude"`
	SystemActions   bool        `yaml:"system_actions"`
	RefreshInterval string      `yaml:"refresh_interval"`
	WatchDirs       bool        `yaml:"watch_dirs"`
}

// WatchdogConfig bounds automatic recovery.
type WatchdogConfig struct {
	Heartbeat     string `yaml:"heartbeat"`
	StallTimeout  string `yaml:"stall_timeout"`
	MaxRestarts   int    `yaml:"max_restarts"`
	RestartWindow string `yaml:"restart_window"`
}

// IPCConfig overrides the resident process paths. Empty values use ~/.nexus.
type IPCConfig struct {
	SocketPath string `yaml:"socket_path,omitempty"`
	PIDPath    string `yaml:"pid_path,omitempty"`
	LockPath   string `yaml:"lock_path,omitempty"`
}

// LoggingConfig configures the rotating log file.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	FilePath  string `yaml:"file_path,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// StartupConfig controls what happens once the index is ready.
type StartupConfig struct {
	ShowOnStartup bool `yaml:"show_on_startup"`
}

var defaultExcludePatterns = []string{
	".git/",
	"node_modules/",
	"**/.cache/",
	"__pycache__/",
	"*.tmp",
	"*.swp",
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Hotkey: HotkeyConfig{
			Binding:  "Alt+Space",
			Fallback: "Ctrl+Alt+Space",
		},
		Search: SearchConfig{
			MaxResults: 6,
			Fuzzy:      true,
			DebounceMS: 50,
			CacheSize:  256,
			CacheTTL:   "30s",
		},
		Index: IndexConfig{
			AppDirs:         defaultAppDirs(runtime.GOOS),
			FileDirs:        []DirConfig{},
			MaxDepth:        3,
			Exclude:         append([]string(nil), defaultExcludePatterns...),
			SystemActions:   true,
			RefreshInterval: "10m",
			WatchDirs:       true,
		},
		Watchdog: WatchdogConfig{
			Heartbeat:     "1s",
			StallTimeout:  "5s",
			MaxRestarts:   3,
			RestartWindow: "60s",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

func defaultAppDirs(goos string) []DirConfig {
	home, _ := os.UserHomeDir()
	desktop := DirConfig{Path: filepath.Join(home, "Desktop"), MaxDepth: 1}
	switch goos {
	case "darwin":
		return []DirConfig{
			{Path: "/Applications"},
			{Path: "/System/Applications"},
			{Path: filepath.Join(home, "Applications")},
			desktop,
		}
	case "windows":
		appData := os.Getenv("APPDATA")
		programData := os.Getenv("PROGRAMDATA")
		return []DirConfig{
			{Path: filepath.Join(programData, `Microsoft\Windows\Start Menu\Programs`)},
			{Path: filepath.Join(appData, `Microsoft\Windows\Start Menu\Programs`)},
			desktop,
		}
	default:
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(home, ".local", "share")
		}
		return []DirConfig{
			{Path: "/usr/share/applications"},
			{Path: "/usr/local/share/applications"},
			{Path: filepath.Join(dataHome, "applications")},
			{Path: "/var/lib/flatpak/exports/share/applications"},
			{Path: filepath.Join(dataHome, "flatpak", "exports", "share", "applications")},
			{Path: "/var/lib/snapd/desktop/applications"},
			desktop,
		}
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/nexus/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/nexus/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nexus", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "nexus", "config.yaml")
	}
	return filepath.Join(home, ".config", "nexus", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load builds the effective configuration. explicit is the --config path
// and may be empty; a non-empty explicit path must exist.
func Load(explicit string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if explicit != "" {
		if !fileExists(explicit) {
			return nil, nxerrors.New(nxerrors.ErrCodeConfigNotFound, "config file not found", os.ErrNotExist).
				WithDetail("path", explicit)
		}
		if err := cfg.loadYAML(explicit); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, nxerrors.ConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// Files returns the configuration files Load would read, in order.
func Files(explicit string) []string {
	var files []string
	if path := GetUserConfigPath(); fileExists(path) {
		files = append(files, path)
	}
	if explicit != "" {
		files = append(files, explicit)
	}
	return files
}

// loadYAML decodes path over c. Keys absent from the file keep their
// current values; unknown keys are rejected.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nxerrors.ConfigError("failed to read config file", err).WithDetail("path", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nxerrors.ConfigError("failed to parse config file", err).WithDetail("path", path)
	}
	return nil
}

// applyEnvOverrides applies NEXUS_* environment variable overrides.
// Malformed values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NEXUS_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("NEXUS_FUZZY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Search.Fuzzy = b
		}
	}
	if v := os.Getenv("NEXUS_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.DebounceMS = n
		}
	}
	if v := os.Getenv("NEXUS_HOTKEY"); v != "" {
		c.Hotkey.Binding = v
	}
	if v := os.Getenv("NEXUS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	// NEXUS_EXCLUDE adds comma-separated patterns to the configured ones.
	if v := os.Getenv("NEXUS_EXCLUDE"); v != "" {
		for p := range strings.SplitSeq(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Index.Exclude = append(c.Index.Exclude, p)
			}
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if _, err := ParseHotkey(c.Hotkey.Binding); err != nil {
		return fmt.Errorf("hotkey.binding: %w", err)
	}
	if c.Hotkey.Fallback != "" {
		if _, err := ParseHotkey(c.Hotkey.Fallback); err != nil {
			return fmt.Errorf("hotkey.fallback: %w", err)
		}
	}

	if c.Search.MaxResults < 1 || c.Search.MaxResults > 50 {
		return fmt.Errorf("search.max_results must be between 1 and 50, got %d", c.Search.MaxResults)
	}
	if c.Search.DebounceMS < 0 || c.Search.DebounceMS > 1000 {
		return fmt.Errorf("search.debounce_ms must be between 0 and 1000, got %d", c.Search.DebounceMS)
	}
	if c.Search.CacheSize < 1 {
		return fmt.Errorf("search.cache_size must be positive, got %d", c.Search.CacheSize)
	}
	if c.Index.MaxDepth < 0 {
		return fmt.Errorf("index.max_depth must be non-negative, got %d", c.Index.MaxDepth)
	}
	if c.Watchdog.MaxRestarts < 0 {
		return fmt.Errorf("watchdog.max_restarts must be non-negative, got %d", c.Watchdog.MaxRestarts)
	}
	if c.Logging.MaxSizeMB < 1 || c.Logging.MaxFiles < 1 {
		return fmt.Errorf("logging.max_size_mb and logging.max_files must be positive")
	}

	for name, v := range map[string]string{
		"search.cache_ttl":        c.Search.CacheTTL,
		"index.refresh_interval":  c.Index.RefreshInterval,
		"watchdog.heartbeat":      c.Watchdog.Heartbeat,
		"watchdog.stall_timeout":  c.Watchdog.StallTimeout,
		"watchdog.restart_window": c.Watchdog.RestartWindow,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d <= 0 && name != "index.refresh_interval" {
			return fmt.Errorf("%s must be positive, got %s", name, v)
		}
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	return nil
}

// Debounce returns the query debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

// CacheTTL returns the result cache lifetime.
func (c *Config) CacheTTL() time.Duration { return mustDuration(c.Search.CacheTTL) }

// RefreshInterval returns the periodic index refresh interval; zero disables it.
func (c *Config) RefreshInterval() time.Duration { return mustDuration(c.Index.RefreshInterval) }

// Heartbeat returns the event loop heartbeat period.
func (c *Config) Heartbeat() time.Duration { return mustDuration(c.Watchdog.Heartbeat) }

// StallTimeout returns how long the event loop may go without a heartbeat.
func (c *Config) StallTimeout() time.Duration { return mustDuration(c.Watchdog.StallTimeout) }

// RestartWindow returns the watchdog budget window.
func (c *Config) RestartWindow() time.Duration { return mustDuration(c.Watchdog.RestartWindow) }

// mustDuration parses a duration that Validate has already checked.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ResolveDir expands a leading ~ and cleans the path.
func ResolveDir(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeNewDefaults fills fields that an older config file predates. A
// missing section is filled as a whole. Returns the names of the fields
// that were added.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string
	fill := func(missing bool, name string, apply func()) {
		if missing {
			apply()
			added = append(added, name)
		}
	}

	fill(c.Version == 0, "version", func() { c.Version = defaults.Version })
	fill(c.Hotkey.Binding == "", "hotkey.binding", func() { c.Hotkey.Binding = defaults.Hotkey.Binding })

	if c.Search == (SearchConfig{}) {
		fill(true, "search", func() { c.Search = defaults.Search })
	} else {
		fill(c.Search.MaxResults == 0, "search.max_results", func() { c.Search.MaxResults = defaults.Search.MaxResults })
		fill(c.Search.CacheSize == 0, "search.cache_size", func() { c.Search.CacheSize = defaults.Search.CacheSize })
		fill(c.Search.CacheTTL == "", "search.cache_ttl", func() { c.Search.CacheTTL = defaults.Search.CacheTTL })
	}

	fill(c.Index.AppDirs == nil, "index.app_dirs", func() { c.Index.AppDirs = defaults.Index.AppDirs })
	fill(c.Index.MaxDepth == 0, "index.max_depth", func() { c.Index.MaxDepth = defaults.Index.MaxDepth })
	fill(c.Index.Exclude == nil, "index.exclude", func() { c.Index.Exclude = defaults.Index.Exclude })
	fill(c.Index.RefreshInterval == "", "index.refresh_interval", func() { c.Index.RefreshInterval = defaults.Index.RefreshInterval })

	fill(c.Watchdog == (WatchdogConfig{}), "watchdog", func() { c.Watchdog = defaults.Watchdog })

	fill(c.Logging.Level == "", "logging.level", func() { c.Logging.Level = defaults.Logging.Level })
	fill(c.Logging.MaxSizeMB == 0, "logging.max_size_mb", func() { c.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB })
	fill(c.Logging.MaxFiles == 0, "logging.max_files", func() { c.Logging.MaxFiles = defaults.Logging.MaxFiles })
	return added
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
