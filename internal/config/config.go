// Package config loads application configuration from taskman.yaml, an
// optional .env file, and environment variables, in increasing precedence.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig controls where the SQLite file lives.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls log verbosity.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file or environment
// overrides are present. The database lives in ~/.taskman/taskman.db,
// falling back to the working directory if the home dir is unknown.
func Default() *Config {
	dbPath := "taskman.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".taskman", "taskman.db")
	}
	return &Config{
		Database: DatabaseConfig{Path: dbPath},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads taskman.yaml from the working directory if present, applies a
// .env file if one exists, then lets environment variables override both.
// A missing config file is not an error.
func Load() (*Config, error) {
	// .env values become plain environment variables; existing vars win
	_ = godotenv.Load()

	cfg := Default()

	if data, err := os.ReadFile("taskman.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if path := os.Getenv("TASKMAN_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}
	if level := os.Getenv("TASKMAN_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// SlogLevel maps the configured level name onto a slog level.
// Unknown names fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
