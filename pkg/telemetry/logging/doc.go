// Package logging builds the structured logger used by retain.
//
// The logger wraps log/slog. It writes JSON or text to a configurable
// writer, stderr by default, because stdout carries the drop list and must
// stay machine readable.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "text",
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithJob(ctx, "db")
//	logger.InfoContext(ctx, "prune finished", "dropped", 12)
//
// Context-aware methods add run_id, job and, when an OpenTelemetry span is
// active, trace_id and span_id.
package logging
