package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// useTempHome points the config package at a throwaway home directory so
// tests never touch the real ~/.cartecalcio.
func useTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadReturnsDefaultsWhenMissing(t *testing.T) {
	useTempHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://api.cartecalcio.example" {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if !cfg.Storage.AutoMigrate {
		t.Error("AutoMigrate should default to true")
	}
	if !cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled should default to true")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	useTempHome(t)

	cfg := DefaultConfig()
	cfg.App.Username = "collezionista"
	cfg.App.DebugMode = true
	cfg.API.Timeout = "45s"
	cfg.Notifications.PollInterval = "1m"

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.App.Username != "collezionista" {
		t.Errorf("Username = %q, want collezionista", loaded.App.Username)
	}
	if !loaded.App.DebugMode {
		t.Error("DebugMode should survive the round trip")
	}
	if loaded.API.Timeout != "45s" {
		t.Errorf("Timeout = %q, want 45s", loaded.API.Timeout)
	}
	if loaded.Notifications.PollInterval != "1m" {
		t.Errorf("PollInterval = %q, want 1m", loaded.Notifications.PollInterval)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := useTempHome(t)

	dir := filepath.Join(home, ".cartecalcio")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("api = {{{"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.API.Timeout = "soon" },
			wantErr: true,
		},
		{
			name:    "bad rate limit",
			mutate:  func(c *Config) { c.API.RateLimit = "sometimes" },
			wantErr: true,
		},
		{
			name:    "bad poll interval",
			mutate:  func(c *Config) { c.Notifications.PollInterval = "often" },
			wantErr: true,
		},
		{
			name:   "empty poll interval is allowed",
			mutate: func(c *Config) { c.Notifications.PollInterval = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := DefaultConfig()

	timeout, err := cfg.APITimeout()
	if err != nil {
		t.Fatalf("APITimeout() error = %v", err)
	}
	if timeout != 30*time.Second {
		t.Errorf("APITimeout() = %v, want 30s", timeout)
	}

	rate, err := cfg.APIRateLimit()
	if err != nil {
		t.Fatalf("APIRateLimit() error = %v", err)
	}
	if rate != 100*time.Millisecond {
		t.Errorf("APIRateLimit() = %v, want 100ms", rate)
	}

	poll, err := cfg.NotificationsPollInterval()
	if err != nil {
		t.Fatalf("NotificationsPollInterval() error = %v", err)
	}
	if poll != 30*time.Second {
		t.Errorf("NotificationsPollInterval() = %v, want 30s", poll)
	}
}

func TestTokenFileExplicitPath(t *testing.T) {
	useTempHome(t)

	cfg := DefaultConfig()
	cfg.Auth.TokenFile = "/tmp/custom-tokens.json"

	path, err := cfg.TokenFile()
	if err != nil {
		t.Fatalf("TokenFile() error = %v", err)
	}
	if path != "/tmp/custom-tokens.json" {
		t.Errorf("TokenFile() = %q, want explicit path", path)
	}
}

func TestTokenFileDefaultsUnderDataDir(t *testing.T) {
	home := useTempHome(t)

	path, err := DefaultConfig().TokenFile()
	if err != nil {
		t.Fatalf("TokenFile() error = %v", err)
	}
	want := filepath.Join(home, ".cartecalcio", "tokens.json")
	if path != want {
		t.Errorf("TokenFile() = %q, want %q", path, want)
	}
}

func TestDatabasePathPrecedence(t *testing.T) {
	home := useTempHome(t)

	cfg := DefaultConfig()

	// Default: under the data directory.
	path, err := cfg.DatabasePath()
	if err != nil {
		t.Fatalf("DatabasePath() error = %v", err)
	}
	want := filepath.Join(home, ".cartecalcio", "cartecalcio.db")
	if path != want {
		t.Errorf("DatabasePath() = %q, want %q", path, want)
	}

	// Configured path wins over the default.
	cfg.Storage.Path = "/var/lib/cartecalcio.db"
	path, err = cfg.DatabasePath()
	if err != nil {
		t.Fatalf("DatabasePath() error = %v", err)
	}
	if path != "/var/lib/cartecalcio.db" {
		t.Errorf("DatabasePath() = %q, want configured path", path)
	}

	// Environment variable wins over everything.
	t.Setenv("CARTECALCIO_DB_PATH", ":memory:")
	path, err = cfg.DatabasePath()
	if err != nil {
		t.Fatalf("DatabasePath() error = %v", err)
	}
	if path != ":memory:" {
		t.Errorf("DatabasePath() = %q, want env override", path)
	}
}
