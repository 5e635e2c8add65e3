// Package config provides configuration management for retain.
//
// Configuration is read from a YAML file, completed with defaults,
// overridden from the environment and validated before anything runs. A
// configuration error aborts the process before a single snapshot name is
// read.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("retain.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("retain.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RETAIN_SECTION_FIELD:
//
//   - RETAIN_JOURNAL_PATH overrides journal.path
//   - RETAIN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - RETAIN_TELEMETRY_TRACING_ENDPOINT overrides telemetry.tracing.endpoint
//
// Job definitions have no environment overrides; S3 credentials fall back
// to the standard AWS environment when left out of the file.
//
// # Example
//
//	jobs:
//	  - name: db
//	    source:
//	      type: dir
//	      path: /backups/db
//	      match: "db-*"
//	    prefix: db-
//	    suffix: .tar.zst
//	    schedule: "15 * * * *"
//	    policies:
//	      - {interval: 1d, count: 7}
//	      - {interval: 1w, count: 8}
//	journal:
//	  enabled: true
//	  path: /var/lib/retain/journal.db
//
// # Global Configuration
//
//	if _, err := config.Load("retain.yaml"); err != nil {
//	    return err
//	}
//	cfg := config.GetConfig()
package config
