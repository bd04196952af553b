// Package config loads and persists the companion configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration, stored as TOML under
// ~/.cartecalcio/config.toml.
type Config struct {
	API           APIConfig           `toml:"api"`
	Auth          AuthConfig          `toml:"auth"`
	Storage       StorageConfig       `toml:"storage"`
	Notifications NotificationsConfig `toml:"notifications"`
	App           AppConfig           `toml:"app"`
}

// APIConfig describes the game backend endpoint.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`   // Backend base URL
	Timeout   string `toml:"timeout"`    // Per-request timeout (e.g. "30s")
	RateLimit string `toml:"rate_limit"` // Minimum delay between requests
}

// AuthConfig describes token persistence.
type AuthConfig struct {
	TokenFile  string `toml:"token_file"` // Token file path ("" = default)
	Passphrase string `toml:"passphrase"` // Encrypt tokens at rest when set
}

// StorageConfig describes the local cache database.
type StorageConfig struct {
	Path        string `toml:"path"`         // SQLite path ("" = default)
	AutoMigrate bool   `toml:"auto_migrate"` // Run migrations on open
}

// NotificationsConfig describes the exchange-notification poller.
type NotificationsConfig struct {
	Enabled      bool   `toml:"enabled"`
	PollInterval string `toml:"poll_interval"` // e.g. "30s"
}

// AppConfig contains general settings.
type AppConfig struct {
	Username  string `toml:"username"`   // Last logged-in user
	DebugMode bool   `toml:"debug_mode"` // Verbose logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://api.cartecalcio.example",
			Timeout:   "30s",
			RateLimit: "100ms",
		},
		Auth: AuthConfig{},
		Storage: StorageConfig{
			AutoMigrate: true,
		},
		Notifications: NotificationsConfig{
			Enabled:      true,
			PollInterval: "30s",
		},
		App: AppConfig{},
	}
}

// Dir returns the companion's data directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dir := filepath.Join(homeDir, ".cartecalcio")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns defaults if no file exists.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &config, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url cannot be empty")
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid api timeout %q: %w", c.API.Timeout, err)
	}
	if _, err := time.ParseDuration(c.API.RateLimit); err != nil {
		return fmt.Errorf("invalid api rate_limit %q: %w", c.API.RateLimit, err)
	}
	if c.Notifications.PollInterval != "" {
		if _, err := time.ParseDuration(c.Notifications.PollInterval); err != nil {
			return fmt.Errorf("invalid notifications poll_interval %q: %w", c.Notifications.PollInterval, err)
		}
	}
	return nil
}

// APITimeout returns the request timeout as a duration.
func (c *Config) APITimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.Timeout)
}

// APIRateLimit returns the inter-request delay as a duration.
func (c *Config) APIRateLimit() (time.Duration, error) {
	return time.ParseDuration(c.API.RateLimit)
}

// NotificationsPollInterval returns the poll interval as a duration.
func (c *Config) NotificationsPollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Notifications.PollInterval)
}

// TokenFile resolves the token file path, defaulting under the data dir.
func (c *Config) TokenFile() (string, error) {
	if c.Auth.TokenFile != "" {
		return c.Auth.TokenFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tokens.json"), nil
}

// DatabasePath resolves the cache database path, defaulting under the data
// dir. The environment variable CARTECALCIO_DB_PATH wins over both.
func (c *Config) DatabasePath() (string, error) {
	if env := os.Getenv("CARTECALCIO_DB_PATH"); env != "" {
		return env, nil
	}
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cartecalcio.db"), nil
}
