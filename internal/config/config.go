package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values read from a config file.
const (
	EnvWorkers     = "EZPOOL_WORKERS"
	EnvLogLevel    = "EZPOOL_LOG_LEVEL"
	EnvMetricsAddr = "EZPOOL_METRICS_ADDR"
)

// Config is the runtime configuration of the ezpool command.
type Config struct {
	ID          string        `yaml:"id" json:"id"`
	Workers     int           `yaml:"workers" json:"workers"`
	LogLevel    string        `yaml:"log_level" json:"log_level"`
	Jobs        int           `yaml:"jobs" json:"jobs"`
	JobDuration string        `yaml:"job_duration" json:"job_duration"`
	MaxInFlight int64         `yaml:"max_in_flight" json:"max_in_flight"`
	Metrics     MetricsConfig `yaml:"metrics" json:"metrics"`
}

// MetricsConfig controls the Prometheus collectors and the endpoint serving
// them. An empty Addr disables the endpoint.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" json:"namespace"`
	Subsystem string `yaml:"subsystem" json:"subsystem"`
	Addr      string `yaml:"addr" json:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Workers:     runtime.NumCPU(),
		LogLevel:    "info",
		Jobs:        10,
		JobDuration: "100ms",
		Metrics: MetricsConfig{
			Namespace: "ezpool",
			Subsystem: "threadpool",
		},
	}
}

// Load builds the configuration from defaults, the optional file at path and
// the environment, in that order. Variables from envFile are loaded into the
// environment first; a missing envFile is not an error.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads a YAML or JSON config file. Fields missing from the file keep
// their Default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return cfg, nil
}

// ApplyEnv overrides fields with any EZPOOL_* variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}

// Validate checks that the configuration can be used to run a pool.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("max_in_flight must not be negative, got %d", c.MaxInFlight)
	}
	if _, err := c.JobDelay(); err != nil {
		return err
	}
	return nil
}

// JobDelay parses JobDuration. An empty value means no delay.
func (c *Config) JobDelay() (time.Duration, error) {
	if c.JobDuration == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.JobDuration)
	if err != nil {
		return 0, fmt.Errorf("invalid job_duration: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("job_duration must not be negative, got %s", d)
	}
	return d, nil
}
