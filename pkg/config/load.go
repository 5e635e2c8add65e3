package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML without applying defaults. Unknown fields are
// rejected so a misspelled key does not silently fall back to a default.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention RETAIN_SECTION_FIELD (e.g., RETAIN_JOURNAL_PATH) and
// always take precedence over the file.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Journal overrides
	envBool("RETAIN_JOURNAL_ENABLED", &cfg.Journal.Enabled)
	envString("RETAIN_JOURNAL_DRIVER", &cfg.Journal.Driver)
	envString("RETAIN_JOURNAL_PATH", &cfg.Journal.Path)
	envDuration("RETAIN_JOURNAL_BUSY_TIMEOUT", &cfg.Journal.BusyTimeout)
	envInt("RETAIN_JOURNAL_HISTORY_DAYS", &cfg.Journal.HistoryDays)
	envString("RETAIN_JOURNAL_PRUNE_SCHEDULE", &cfg.Journal.PruneSchedule)

	// Telemetry overrides
	t := &cfg.Telemetry
	envString("RETAIN_TELEMETRY_LOGGING_LEVEL", &t.Logging.Level)
	envString("RETAIN_TELEMETRY_LOGGING_FORMAT", &t.Logging.Format)
	envBool("RETAIN_TELEMETRY_METRICS_ENABLED", &t.Metrics.Enabled)
	envString("RETAIN_TELEMETRY_METRICS_LISTEN_ADDRESS", &t.Metrics.ListenAddress)
	envString("RETAIN_TELEMETRY_METRICS_PATH", &t.Metrics.Path)
	envBool("RETAIN_TELEMETRY_TRACING_ENABLED", &t.Tracing.Enabled)
	envString("RETAIN_TELEMETRY_TRACING_ENDPOINT", &t.Tracing.Endpoint)
	envString("RETAIN_TELEMETRY_TRACING_SAMPLER", &t.Tracing.Sampler)
	envFloat("RETAIN_TELEMETRY_TRACING_SAMPLE_RATIO", &t.Tracing.SampleRatio)
	envBool("RETAIN_TELEMETRY_TRACING_OTLP_INSECURE", &t.Tracing.OTLP.Insecure)
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
