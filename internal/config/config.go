package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"edf-viewer/internal/edfclient"

	"github.com/spf13/viper"
)

// Config holds the configuration of the terminal browser.
type Config struct {
	BackendURL string        `mapstructure:"backend_url"`
	API        APIConfig     `mapstructure:"api"`
	UI         UIConfig      `mapstructure:"ui"`
	Cache      CacheConfig   `mapstructure:"cache"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

// APIConfig describes the catalogue endpoint.
type APIConfig struct {
	Path    string        `mapstructure:"path"`
	Delay   time.Duration `mapstructure:"delay"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Sorted bool `mapstructure:"sorted"` // start in the sorted view
}

// CacheConfig controls the offline copy of the last catalogue.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BackendURL: "http://localhost:8080",
		API: APIConfig{
			Path:    "/api/edfs",
			Delay:   edfclient.DefaultDelay,
			Timeout: edfclient.DefaultTimeout,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     filepath.Join(defaultDataDir(), "cache"),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataDir(), "edf-browser.log"),
			Level: "info",
		},
	}
}

// defaultDataDir returns the directory for logs and cache on this OS
func defaultDataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "edf-browser")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "edf-browser")
	}
}

// defaultConfigDir returns the default config directory for the current OS
func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "edf-browser")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "edf-browser")
	}
}

// Load reads config.yaml from the config directory or the working directory
// and applies EDF_* environment overrides, e.g. EDF_BACKEND_URL or
// EDF_API_DELAY. A missing config file is not an error.
func Load() (*Config, error) {
	return load(viper.New(), defaultConfigDir(), ".")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("EDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees environment values for keys viper knows about.
	v.SetDefault("backend_url", cfg.BackendURL)
	v.SetDefault("api.path", cfg.API.Path)
	v.SetDefault("api.delay", cfg.API.Delay)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("ui.sorted", cfg.UI.Sorted)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the backend URL and timings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend_url %q: expected http(s)://host[:port]", c.BackendURL)
	}
	if !strings.HasPrefix(c.API.Path, "/") {
		return fmt.Errorf("invalid api.path %q: must start with /", c.API.Path)
	}
	if c.API.Delay < 0 {
		return fmt.Errorf("invalid api.delay %v: must not be negative", c.API.Delay)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("invalid api.timeout %v: must be positive", c.API.Timeout)
	}
	return nil
}

// EndpointURL joins the backend origin and the API path.
func (c *Config) EndpointURL() string {
	return strings.TrimRight(c.BackendURL, "/") + "/" + strings.Trim(c.API.Path, "/")
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}
