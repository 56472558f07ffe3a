package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./favdl.db" {
			t.Errorf("expected database path ./favdl.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.API.BaseURL != "https://api.bilibili.com" {
			t.Errorf("expected base URL https://api.bilibili.com, got %s", config.API.BaseURL)
		}

		if config.API.MaxPages != 0 {
			t.Errorf("expected unbounded pagination by default, got max_pages=%d", config.API.MaxPages)
		}

		if config.HTTP.RequestTimeout != 30*time.Second {
			t.Errorf("expected request timeout 30s, got %v", config.HTTP.RequestTimeout)
		}

		if config.HTTP.DownloadTimeout != 10*time.Minute {
			t.Errorf("expected download timeout 10m, got %v", config.HTTP.DownloadTimeout)
		}

		if config.Credentials.Sessdata != "" {
			t.Errorf("expected empty sessdata, got %s", config.Credentials.Sessdata)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials]
sessdata = "abc%2C123"

[api]
max_pages = 50

[http]
request_timeout = "5s"

[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Sessdata != "abc%2C123" {
			t.Errorf("expected sessdata abc%%2C123, got %s", config.Credentials.Sessdata)
		}

		if config.API.MaxPages != 50 {
			t.Errorf("expected max_pages 50, got %d", config.API.MaxPages)
		}

		if config.HTTP.RequestTimeout != 5*time.Second {
			t.Errorf("expected request timeout 5s, got %v", config.HTTP.RequestTimeout)
		}

		if config.HTTP.DownloadTimeout != 10*time.Minute {
			t.Errorf("expected default download timeout to survive partial config, got %v", config.HTTP.DownloadTimeout)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")
		if err := os.WriteFile(configPath, []byte("[api\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
	t.Run("SaveConfig round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.Credentials.Sessdata = "token"
		config.API.MaxPages = 7
		config.HTTP.RequestTimeout = 12 * time.Second

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if loaded.Credentials.Sessdata != "token" {
			t.Errorf("expected sessdata token, got %q", loaded.Credentials.Sessdata)
		}
		if loaded.API.MaxPages != 7 {
			t.Errorf("expected max_pages 7, got %d", loaded.API.MaxPages)
		}
		if loaded.HTTP.RequestTimeout != 12*time.Second {
			t.Errorf("expected request timeout 12s, got %v", loaded.HTTP.RequestTimeout)
		}
	})
}
