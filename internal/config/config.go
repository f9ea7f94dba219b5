// Package config loads statingest configuration: defaults, then an
// optional YAML file, then an optional .env file, then STATINGEST_*
// environment variables. Later layers win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	// DatabasePath is the SQLite database location.
	DatabasePath string `yaml:"database_path"`
	// SeedDir is where the seed command looks for reference CSVs.
	SeedDir string `yaml:"seed_dir"`

	Fetch FetchConfig `yaml:"fetch"`
}

// FetchConfig tunes the HTTP fetch adapter.
type FetchConfig struct {
	TimeoutStr string `yaml:"timeout"`
	UserAgent  string `yaml:"user_agent"`

	Timeout time.Duration `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DatabasePath: "statingest.db",
		SeedDir:      "seed",
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			UserAgent: "statingest/1.0 (+https://github.com/mward/statingest)",
		},
	}
}

// Load builds the configuration. path may be empty (no YAML layer). A
// .env file in the working directory is applied if present; real
// environment variables always win over it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// godotenv never overwrites variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)

	if cfg.Fetch.TimeoutStr != "" {
		d, err := time.ParseDuration(cfg.Fetch.TimeoutStr)
		if err != nil {
			return cfg, fmt.Errorf("parse fetch timeout %q: %w", cfg.Fetch.TimeoutStr, err)
		}
		cfg.Fetch.Timeout = d
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STATINGEST_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("STATINGEST_SEED_DIR"); v != "" {
		cfg.SeedDir = v
	}
	if v := os.Getenv("STATINGEST_FETCH_TIMEOUT"); v != "" {
		cfg.Fetch.TimeoutStr = v
	}
	if v := os.Getenv("STATINGEST_USER_AGENT"); v != "" {
		cfg.Fetch.UserAgent = v
	}
}
