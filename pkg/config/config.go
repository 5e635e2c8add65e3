package config

import (
	"fmt"
	"time"

	"mercator-hq/retain/pkg/retention"
)

// Config is the root configuration structure for retain.
type Config struct {
	// Jobs lists the snapshot sets to evaluate.
	Jobs []JobConfig `yaml:"jobs"`

	// Journal configures the run history store.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Job returns the job with the given name.
func (c *Config) Job(name string) (*JobConfig, bool) {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i], true
		}
	}
	return nil, false
}

// JobConfig describes one set of snapshots and how long to keep them.
type JobConfig struct {
	// Name identifies the job in logs, metrics and the journal.
	Name string `yaml:"name"`

	// Source selects where snapshot names come from.
	Source SourceConfig `yaml:"source"`

	// Format is the strftime format snapshot names are parsed with.
	// Default: "%Y%m%d-%H:%M"
	Format string `yaml:"format"`

	// Prefix and Suffix are stripped from names before parsing.
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`

	// Alignment places bucket boundaries: "anchor" or "interval".
	// Default: "anchor"
	Alignment string `yaml:"alignment"`

	// Cron is a standard five-field cron expression for "retain run".
	// Jobs without one run once at startup only.
	Cron string `yaml:"schedule"`

	// Watch re-runs a dir job whenever its directory changes.
	Watch bool `yaml:"watch"`

	// Policies are evaluated in order.
	Policies []PolicyConfig `yaml:"policies"`
}

// RetentionSchedule converts the configured policies.
func (j *JobConfig) RetentionSchedule() (retention.Schedule, error) {
	s := make(retention.Schedule, 0, len(j.Policies))
	for i, p := range j.Policies {
		iv, err := retention.ParseInterval(p.Interval)
		if err != nil {
			return nil, fmt.Errorf("policy %d: invalid interval '%s': %w", i, p.Interval, err)
		}
		s = append(s, retention.Policy{Interval: iv, Count: p.Count})
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SourceConfig selects and configures a snapshot source.
type SourceConfig struct {
	// Type is "stdin", "dir" or "s3".
	// Default: "stdin"
	Type string `yaml:"type"`

	// Path is the directory for dir sources.
	Path string `yaml:"path"`

	// Match is an optional glob names must satisfy (dir sources).
	Match string `yaml:"match"`

	// FullPath reports dir entries as full paths.
	FullPath bool `yaml:"full_path"`

	// Bucket, Prefix, Region and Endpoint configure s3 sources.
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	// PathStyle enables path-style S3 addressing (MinIO and similar).
	PathStyle bool `yaml:"path_style"`

	// AccessKeyID and SecretAccessKey select static S3 credentials.
	// If empty, the default AWS credential chain is used.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// PolicyConfig is one retention policy. Interval accepts seconds, Go
// durations and day/week suffixes ("86400", "36h", "1d", "2w").
type PolicyConfig struct {
	Interval string `yaml:"interval"`
	Count    uint32 `yaml:"count"`
}

// JournalConfig configures the run history store.
type JournalConfig struct {
	// Enabled turns on run recording.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Driver is "sqlite" (pure Go), "sqlite3" (cgo) or "memory".
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file.
	// Default: "retain.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// HistoryDays is how long runs are kept. Zero keeps them forever.
	// Default: 90
	HistoryDays int `yaml:"history_days"`

	// PruneSchedule is when "retain run" trims old runs.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether "retain run" serves metrics.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the metrics endpoint listens.
	// Default: "127.0.0.1:9465"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "retain"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "prune"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for run duration (seconds).
	// Default: [0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio", "parent_based"
	// Default: "parent_based"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "retain"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	Insecure bool `yaml:"insecure"`

	// Timeout is the export timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Headers are sent with every export request.
	Headers map[string]string `yaml:"headers"`
}
