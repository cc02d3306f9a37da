package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"avaloniamcp/internal/cache"
	"avaloniamcp/internal/logging"
	"avaloniamcp/pkg/fileops"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "avaloniamcp" // application name used for config directory

// DataDirEnv overrides Config.DataDir when set
const DataDirEnv = "AVALONIA_MCP_DATA_DIR"

// DefaultPreloadFiles are the knowledge base files warmed at startup
var DefaultPreloadFiles = []string{"controls.json", "xaml-patterns.json", "migration-guide.json"}

// CacheConfig tunes the resource cache.
type CacheConfig struct {
	DefaultTTL      time.Duration `yaml:"default_ttl"`
	MaxEntries      int           `yaml:"max_entries"`
	PreloadTTL      time.Duration `yaml:"preload_ttl"`
	PreloadFiles    []string      `yaml:"preload_files"`
	SingleFlight    bool          `yaml:"single_flight"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // 0 disables the janitor
}

// Config holds server configuration.
type Config struct {
	// DataDir is the directory holding the knowledge base JSON files and guides/.
	DataDir   string      `yaml:"data_dir"`
	WatchData bool        `yaml:"watch_data"`
	Cache     CacheConfig `yaml:"cache"`
	Version   string      `yaml:"version"` // Track config version
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() string {
	configPath := filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
	logging.Debug("Determined config path", "path", configPath)
	return configPath
}

// DefaultDataDir returns the Data directory next to the running executable,
// or ./Data when the executable cannot be located.
func DefaultDataDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "Data"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "Data")
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		DataDir: DefaultDataDir(),
		Cache: CacheConfig{
			DefaultTTL:      cache.DefaultTTL,
			MaxEntries:      cache.DefaultMaxEntries,
			PreloadTTL:      cache.DefaultPreloadTTL,
			PreloadFiles:    append([]string(nil), DefaultPreloadFiles...),
			CleanupInterval: 5 * time.Minute,
		},
		Version: "1.0",
	}
}

// Load loads the config from the standard location. A missing file is not
// an error; defaults are used instead.
func Load() (*Config, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logging.Debug("No config file found, using defaults", "path", path)
		cfg := Default()
		cfg.applyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads config from a specific path. Fields absent from the file
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.DataDir = fileops.ExpandPath(cfg.DataDir)
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate rejects settings the cache cannot run with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache.default_ttl must be positive, got %s", c.Cache.DefaultTTL)
	}
	if c.Cache.PreloadTTL <= 0 {
		return fmt.Errorf("cache.preload_ttl must be positive, got %s", c.Cache.PreloadTTL)
	}
	if c.Cache.CleanupInterval < 0 {
		return fmt.Errorf("cache.cleanup_interval cannot be negative, got %s", c.Cache.CleanupInterval)
	}
	for _, name := range c.Cache.PreloadFiles {
		if err := fileops.ValidatePathSecurity(name); err != nil {
			return fmt.Errorf("invalid preload file %q: %w", name, err)
		}
	}
	return nil
}

// SetDataDir points the config at a different data directory.
func (c *Config) SetDataDir(dir string) {
	c.DataDir = fileops.ExpandPath(dir)
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		logging.Debug("Data directory overridden from environment", "env", DataDirEnv, "path", dir)
		c.SetDataDir(dir)
	}
}
