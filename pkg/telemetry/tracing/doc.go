// Package tracing sets up OpenTelemetry tracing for retain.
//
// When tracing is enabled, spans are exported over OTLP gRPC to the
// configured collector. When it is disabled, New returns a tracer backed by
// the noop provider, so instrumented code never needs to check.
//
// Spans emitted by retain:
//
//   - prune.run: one per job run, with job, source and result counts
//   - retention.evaluate: the evaluation itself, with entry and policy counts
//
// Usage:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanPruneRun)
//	defer span.End()
package tracing
