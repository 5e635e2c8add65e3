package config

import "time"

// Default values for configuration fields.
const (
	// Job defaults
	DefaultSourceType = "stdin"
	DefaultFormat     = "%Y%m%d-%H:%M"
	DefaultAlignment  = "anchor"

	// Journal defaults
	DefaultJournalDriver        = "sqlite"
	DefaultJournalPath          = "retain.db"
	DefaultJournalBusyTimeout   = 5 * time.Second
	DefaultJournalHistoryDays   = 90
	DefaultJournalPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "text"
	DefaultMetricsListenAddress = "127.0.0.1:9465"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "retain"
	DefaultMetricsSubsystem     = "prune"
	DefaultTracingSampler       = "parent_based"
	DefaultTracingSampleRatio   = 1.0
	DefaultTracingServiceName   = "retain"
	DefaultOTLPTimeout          = 10 * time.Second
)

// DefaultDurationBuckets are the run duration histogram buckets in seconds.
var DefaultDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60}

// ApplyDefaults sets defaults for any fields that have zero values. It is
// idempotent.
func ApplyDefaults(cfg *Config) {
	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if job.Source.Type == "" {
			job.Source.Type = DefaultSourceType
		}
		if job.Format == "" {
			job.Format = DefaultFormat
		}
		if job.Alignment == "" {
			job.Alignment = DefaultAlignment
		}
	}

	if cfg.Journal.Driver == "" {
		cfg.Journal.Driver = DefaultJournalDriver
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
	if cfg.Journal.BusyTimeout == 0 {
		cfg.Journal.BusyTimeout = DefaultJournalBusyTimeout
	}
	if cfg.Journal.HistoryDays == 0 {
		cfg.Journal.HistoryDays = DefaultJournalHistoryDays
	}
	if cfg.Journal.PruneSchedule == "" {
		cfg.Journal.PruneSchedule = DefaultJournalPruneSchedule
	}

	t := &cfg.Telemetry
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}
	if t.Metrics.ListenAddress == "" {
		t.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}

// NewDefaultConfig returns a configuration with no jobs and every default
// applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
