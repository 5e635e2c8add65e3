// Package metrics exposes Prometheus metrics for prune runs.
//
// # Metrics
//
//   - retain_prune_runs_total{job,status}: completed runs, status "ok" or "error"
//   - retain_prune_entries{job,partition}: entries kept and dropped by the last run
//   - retain_prune_parse_warnings_total{job}: names that could not be parsed
//   - retain_prune_duration_seconds{job}: run duration histogram
//   - retain_prune_last_success_timestamp_seconds{job}: when the job last succeeded
//   - retain_prune_journal_pruned_total: journal rows removed by history trimming
//
// Namespace and subsystem are configurable; the names above use the
// defaults.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRun("db", "ok", 7, 12, 0, time.Second)
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A nil *Collector is valid and records nothing, so callers do not need to
// branch on whether metrics are enabled.
package metrics
