package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AppName        = "decknotes"
	ConfigFileName = "config.yaml"
	SettingsDBName = "settings.db"
	PagesDirName   = "pages"

	// EnvRootDir overrides root_dir from the config file.
	EnvRootDir = "DECKNOTES_ROOT"
)

type Config struct {
	Version    int         `yaml:"version"`
	RootDir    string      `yaml:"root_dir"`
	LegacyDir  string      `yaml:"legacy_dir,omitempty"` // migrated into root_dir on startup
	SettingsDB string      `yaml:"settings_db"`
	LogLevel   string      `yaml:"log_level"` // trace | debug | info | warning | error
	LogFile    string      `yaml:"log_file,omitempty"`
	HTTP       HTTPConfig  `yaml:"http"`
	Watch      WatchConfig `yaml:"watch"`
}

type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"` // also serve HTTP while the GUI runs
	Addr    string `yaml:"addr"`
}

type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// Debounce returns the watcher debounce as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// DataDir is where the app keeps its own files (pages, settings db).
func DataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", AppName)
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, AppName, ConfigFileName)
}

func DefaultConfig() *Config {
	dataDir := DataDir()
	return &Config{
		Version:    1,
		RootDir:    filepath.Join(dataDir, PagesDirName),
		SettingsDB: filepath.Join(dataDir, SettingsDBName),
		LogLevel:   "info",
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:8089",
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 300,
		},
	}
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = *DefaultConfig()
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if root := os.Getenv(EnvRootDir); root != "" {
		cfg.RootDir = root
	}

	// Apply defaults for missing values (older config files)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.RootDir == "" {
		c.RootDir = defaults.RootDir
	}
	if c.SettingsDB == "" {
		c.SettingsDB = defaults.SettingsDB
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaults.HTTP.Addr
	}
	if c.Watch.DebounceMs <= 0 {
		c.Watch.DebounceMs = defaults.Watch.DebounceMs
	}
}

// Validate checks the values the page store depends on.
func (c *Config) Validate() error {
	if !filepath.IsAbs(c.RootDir) {
		return fmt.Errorf("root_dir must be an absolute path, got %q", c.RootDir)
	}
	if c.LegacyDir != "" && !filepath.IsAbs(c.LegacyDir) {
		return fmt.Errorf("legacy_dir must be an absolute path, got %q", c.LegacyDir)
	}
	return nil
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
