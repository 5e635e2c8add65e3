package config

import (
	"reflect"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Jobs: []JobConfig{{Name: "a"}}}
	ApplyDefaults(cfg)

	job := cfg.Jobs[0]
	if job.Source.Type != DefaultSourceType || job.Format != DefaultFormat || job.Alignment != DefaultAlignment {
		t.Errorf("job defaults = %+v", job)
	}
	if cfg.Journal.Driver != DefaultJournalDriver || cfg.Journal.HistoryDays != DefaultJournalHistoryDays {
		t.Errorf("journal defaults = %+v", cfg.Journal)
	}
	if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("metrics namespace = %q", cfg.Telemetry.Metrics.Namespace)
	}
	if !reflect.DeepEqual(cfg.Telemetry.Metrics.DurationBuckets, DefaultDurationBuckets) {
		t.Errorf("duration buckets = %v", cfg.Telemetry.Metrics.DurationBuckets)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Journal.Driver = "memory"
	cfg.Telemetry.Logging.Format = "json"
	cfg.Telemetry.Tracing.SampleRatio = 0.5

	ApplyDefaults(cfg)
	ApplyDefaults(cfg)

	if cfg.Journal.Driver != "memory" || cfg.Telemetry.Logging.Format != "json" || cfg.Telemetry.Tracing.SampleRatio != 0.5 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestNewDefaultConfig(t *testing.T) {
	if err := Validate(NewDefaultConfig()); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}
