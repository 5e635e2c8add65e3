package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/source"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "jobs[0].policies[1].interval").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateJobs(cfg.Jobs)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateJobs(jobs []JobConfig) []FieldError {
	var errs []FieldError
	seen := make(map[string]bool)

	for i := range jobs {
		job := &jobs[i]
		prefix := fmt.Sprintf("jobs[%d]", i)

		if job.Name == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "job name is required"})
		} else if seen[job.Name] {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: fmt.Sprintf("duplicate job name %q", job.Name)})
		}
		seen[job.Name] = true

		errs = append(errs, validateSource(prefix, job)...)

		if _, err := source.NewTimeParser(job.Format); err != nil {
			errs = append(errs, FieldError{Field: prefix + ".format", Message: err.Error()})
		}
		if _, err := retention.ParseAlignment(job.Alignment); err != nil {
			errs = append(errs, FieldError{Field: prefix + ".alignment", Message: err.Error()})
		}
		if job.Cron != "" {
			if _, err := cron.ParseStandard(job.Cron); err != nil {
				errs = append(errs, FieldError{
					Field:   prefix + ".schedule",
					Message: fmt.Sprintf("invalid cron schedule %q: %v", job.Cron, err),
				})
			}
		}

		if len(job.Policies) == 0 {
			errs = append(errs, FieldError{Field: prefix + ".policies", Message: "at least one policy is required"})
		}
		for j, p := range job.Policies {
			if _, err := retention.ParseInterval(p.Interval); err != nil {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("%s.policies[%d].interval", prefix, j),
					Message: fmt.Sprintf("invalid interval '%s': %v", p.Interval, err),
				})
			}
		}
	}
	return errs
}

func validateSource(jobPrefix string, job *JobConfig) []FieldError {
	var errs []FieldError
	src := &job.Source
	prefix := jobPrefix + ".source"

	switch src.Type {
	case "stdin":
		if job.Cron != "" || job.Watch {
			errs = append(errs, FieldError{Field: prefix + ".type", Message: "stdin sources cannot be scheduled or watched"})
		}
	case "dir":
		if src.Path == "" {
			errs = append(errs, FieldError{Field: prefix + ".path", Message: "path is required for dir sources"})
		}
	case "s3":
		if src.Bucket == "" {
			errs = append(errs, FieldError{Field: prefix + ".bucket", Message: "bucket is required for s3 sources"})
		}
		if (src.AccessKeyID == "") != (src.SecretAccessKey == "") {
			errs = append(errs, FieldError{Field: prefix + ".access_key_id", Message: "access_key_id and secret_access_key must be set together"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   prefix + ".type",
			Message: fmt.Sprintf("invalid source type %q: must be 'stdin', 'dir', or 's3'", src.Type),
		})
	}

	if job.Watch && src.Type != "dir" {
		errs = append(errs, FieldError{Field: jobPrefix + ".watch", Message: "watch is only supported for dir sources"})
	}
	return errs
}

func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true, "memory": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "journal.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite', 'sqlite3', or 'memory'", cfg.Driver),
		})
	}
	if cfg.Enabled && cfg.Driver != "memory" && cfg.Path == "" {
		errs = append(errs, FieldError{Field: "journal.path", Message: "path is required when the journal is enabled"})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "journal.busy_timeout", Message: "busy timeout must be positive"})
	}
	if cfg.HistoryDays < 0 {
		errs = append(errs, FieldError{Field: "journal.history_days", Message: "history days must be non-negative"})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "journal.prune_schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.PruneSchedule, err),
			})
		}
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{Field: "telemetry.metrics.listen_address", Message: "listen address is required when metrics are enabled"})
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true, "parent_based": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', 'ratio', or 'parent_based'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	return errs
}
