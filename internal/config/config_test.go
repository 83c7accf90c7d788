package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if cfg.Port != 8317 {
			t.Errorf("port = %d, want 8317", cfg.Port)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("log_level = %q, want info", cfg.LogLevel)
		}
		if cfg.DBPath == "" {
			t.Error("db_path should have a default")
		}
		if cfg.ServerURL != "http://localhost:8317" {
			t.Errorf("server_url = %q, want the port default", cfg.ServerURL)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, strings.Join([]string{
			"port: 9000",
			"db_path: /tmp/custom.db",
			"api_key: sekrit",
			"log_level: debug",
		}, "\n"))

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if cfg.Port != 9000 || cfg.DBPath != "/tmp/custom.db" {
			t.Errorf("unexpected config %+v", cfg)
		}
		if cfg.APIKey != "sekrit" || cfg.LogLevel != "debug" {
			t.Errorf("unexpected config %+v", cfg)
		}
		if cfg.ServerURL != "http://localhost:9000" {
			t.Errorf("server_url = %q, want derived from the file port", cfg.ServerURL)
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "port: 9000\nlog_level: debug\n")
		t.Setenv("TIMEBOX_PORT", "9100")
		t.Setenv("TIMEBOX_LOG_LEVEL", "warn")
		t.Setenv("TIMEBOX_SERVER_URL", "http://10.0.0.5:9100")

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if cfg.Port != 9100 {
			t.Errorf("port = %d, want 9100", cfg.Port)
		}
		if cfg.LogLevel != "warn" {
			t.Errorf("log_level = %q, want warn", cfg.LogLevel)
		}
		if cfg.ServerURL != "http://10.0.0.5:9100" {
			t.Errorf("server_url = %q, want the env value", cfg.ServerURL)
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := writeConfig(t, "port: [not a port\n")
		if _, err := LoadFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Port: 8317, DBPath: "/tmp/t.db", LogLevel: "info"}
			tc.mutate(cfg)
			err := cfg.validate()
			if tc.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("validate() error = %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("TIMEBOX_CONFIG selects the file", func(t *testing.T) {
		path := writeConfig(t, "port: 9200\n")
		t.Setenv("TIMEBOX_CONFIG", path)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != 9200 {
			t.Errorf("port = %d, want 9200", cfg.Port)
		}
	})
}
