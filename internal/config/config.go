// Package config reads process configuration from the environment.
// Preferences the user edits in the UI live in the settings table instead.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/sadopc/fundscope/internal/store"
)

// Config holds runtime configuration for fundscope.
type Config struct {
	DBPath    string `envconfig:"DB_PATH"`
	LogFile   string `envconfig:"LOG_FILE"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	ExportDir string `envconfig:"EXPORT_DIR"`
}

// Load reads FUNDSCOPE_* variables and fills in path defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("fundscope", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("default db path: %w", err)
		}
		cfg.DBPath = p
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(filepath.Dir(cfg.DBPath), "fundscope.log")
	}
	if cfg.ExportDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home dir: %w", err)
		}
		cfg.ExportDir = home
	}
	return &cfg, nil
}

// Level maps LogLevel to a slog level. Unknown values mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
