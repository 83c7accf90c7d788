// Package config loads daemon and client settings from an optional YAML file
// with environment-variable overrides. Environment always wins so a file
// checked into dotfiles can still be overridden per invocation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      int    `yaml:"port"`
	DBPath    string `yaml:"db_path"`
	APIKey    string `yaml:"api_key"`
	LogLevel  string `yaml:"log_level"`
	ServerURL string `yaml:"server_url"`
}

// Load reads the config file at TIMEBOX_CONFIG (or the default location if
// unset), applies environment overrides, and validates the result. A missing
// file is not an error; defaults apply.
func Load() (*Config, error) {
	path := os.Getenv("TIMEBOX_CONFIG")
	if path == "" {
		path = defaultConfigPath()
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{
		Port:     8317,
		DBPath:   defaultDBPath(),
		LogLevel: "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults apply
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	cfg.Port = envInt("TIMEBOX_PORT", cfg.Port)
	cfg.DBPath = envStr("TIMEBOX_DB_PATH", cfg.DBPath)
	cfg.APIKey = envStr("TIMEBOX_API_KEY", cfg.APIKey)
	cfg.LogLevel = envStr("TIMEBOX_LOG_LEVEL", cfg.LogLevel)
	cfg.ServerURL = envStr("TIMEBOX_SERVER_URL", cfg.ServerURL)

	if cfg.ServerURL == "" {
		cfg.ServerURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "timebox", "config.yaml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timebox.db"
	}
	return filepath.Join(home, ".local", "share", "timebox", "timebox.db")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
