// Package telemetry groups the observability packages used by retain.
//
// # Components
//
//   - logging: structured slog logging with run and job correlation
//   - metrics: Prometheus collectors for prune runs and journal trims
//   - tracing: OpenTelemetry spans around each run and evaluation
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", Writer: os.Stderr})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//
//	pruner := prune.NewPruner(
//		prune.WithLogger(logger),
//		prune.WithMetrics(collector),
//		prune.WithTracer(tracer),
//	)
//
// Metrics and health share one HTTP server, started by "retain run" when
// telemetry.metrics.enabled is set.
package telemetry
