// Package config loads the application configuration and resolves the
// inference endpoint.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is given and it exists.
const DefaultPath = "config.yaml"

// Config represents the application configuration.
type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Database       Database      `yaml:"database"`
	APIURL         string        `yaml:"api_url"`
	HFToken        string        `yaml:"hf_token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
}

// Database selects the settings store backend.
type Database struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		AllowedOrigins: []string{"http://localhost:5173"},
		Database:       Database{Driver: "sqlite", DSN: "foodrec.db"},
		RequestTimeout: 45 * time.Second,
		LogLevel:       "info",
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. An empty path reads DefaultPath if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(&cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + v
	}
	if v := getenv("FOODREC_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("FOODREC_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}
	if v := getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := getenv(SettingAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := getenv("HF_TOKEN"); v != "" {
		cfg.HFToken = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}
