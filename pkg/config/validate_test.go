package config

import (
	"errors"
	"strings"
	"testing"

	"mercator-hq/retain/pkg/retention"
)

func validConfig() *Config {
	cfg := &Config{
		Jobs: []JobConfig{{
			Name:     "db",
			Source:   SourceConfig{Type: "dir", Path: "/backups"},
			Cron:     "0 * * * *",
			Policies: []PolicyConfig{{Interval: "1d", Count: 3}},
		}},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"missing name", func(c *Config) { c.Jobs[0].Name = "" }, "jobs[0].name"},
		{"duplicate name", func(c *Config) { c.Jobs = append(c.Jobs, c.Jobs[0]) }, "jobs[1].name"},
		{"unknown source", func(c *Config) { c.Jobs[0].Source.Type = "ftp" }, "jobs[0].source.type"},
		{"dir without path", func(c *Config) { c.Jobs[0].Source.Path = "" }, "jobs[0].source.path"},
		{"s3 without bucket", func(c *Config) { c.Jobs[0].Source = SourceConfig{Type: "s3"} }, "jobs[0].source.bucket"},
		{"half credentials", func(c *Config) {
			c.Jobs[0].Source = SourceConfig{Type: "s3", Bucket: "b", AccessKeyID: "id"}
		}, "jobs[0].source.access_key_id"},
		{"scheduled stdin", func(c *Config) { c.Jobs[0].Source = SourceConfig{Type: "stdin"} }, "jobs[0].source.type"},
		{"watched s3", func(c *Config) {
			c.Jobs[0].Source = SourceConfig{Type: "s3", Bucket: "b"}
			c.Jobs[0].Watch = true
		}, "jobs[0].watch"},
		{"bad format", func(c *Config) { c.Jobs[0].Format = "%Q" }, "jobs[0].format"},
		{"bad alignment", func(c *Config) { c.Jobs[0].Alignment = "midnight" }, "jobs[0].alignment"},
		{"bad cron", func(c *Config) { c.Jobs[0].Cron = "every hour" }, "jobs[0].schedule"},
		{"no policies", func(c *Config) { c.Jobs[0].Policies = nil }, "jobs[0].policies"},
		{"zero interval", func(c *Config) { c.Jobs[0].Policies[0].Interval = "0" }, "jobs[0].policies[0].interval"},
		{"garbage interval", func(c *Config) { c.Jobs[0].Policies[0].Interval = "soon" }, "jobs[0].policies[0].interval"},
		{"journal driver", func(c *Config) { c.Journal.Driver = "postgres" }, "journal.driver"},
		{"journal cron", func(c *Config) { c.Journal.PruneSchedule = "daily" }, "journal.prune_schedule"},
		{"history days", func(c *Config) { c.Journal.HistoryDays = -1 }, "journal.history_days"},
		{"log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"metrics path", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Path = "metrics"
		}, "telemetry.metrics.path"},
		{"tracing endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"sample ratio", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %v, want one for %s", verr.Errors, tt.wantField)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("Error() = %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(multi.Error(), "with 2 errors") {
		t.Errorf("Error() = %q, want error count", multi.Error())
	}
}

func TestJobConfig_RetentionSchedule(t *testing.T) {
	job := &JobConfig{Policies: []PolicyConfig{{Interval: "0", Count: 1}}}
	if _, err := job.RetentionSchedule(); !errors.Is(err, retention.ErrZeroInterval) {
		t.Errorf("RetentionSchedule() error = %v, want ErrZeroInterval", err)
	}

	job = &JobConfig{}
	if _, err := job.RetentionSchedule(); !errors.Is(err, retention.ErrNoPolicies) {
		t.Errorf("RetentionSchedule() error = %v, want ErrNoPolicies", err)
	}
}
