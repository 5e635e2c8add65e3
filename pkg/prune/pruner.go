package prune

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/retain/pkg/journal"
	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/source"
	"mercator-hq/retain/pkg/telemetry/logging"
	"mercator-hq/retain/pkg/telemetry/metrics"
	"mercator-hq/retain/pkg/telemetry/tracing"
)

// Pruner runs jobs and routes their reports.
type Pruner struct {
	sink    Sink
	journal journal.Store
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	base    *logging.Logger
	logger  *logging.Logger
	now     func() time.Time
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithSink sets where reports go. Default: Discard
func WithSink(s Sink) Option {
	return func(p *Pruner) { p.sink = s }
}

// WithJournal records every run in store.
func WithJournal(store journal.Store) Option {
	return func(p *Pruner) { p.journal = store }
}

// WithMetrics counts runs in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pruner) { p.metrics = c }
}

// WithTracer traces runs with t.
func WithTracer(t *tracing.Tracer) Option {
	return func(p *Pruner) { p.tracer = t }
}

// WithLogger sets the logger. Default: slog.Default()
func WithLogger(l *logging.Logger) Option {
	return func(p *Pruner) { p.base = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pruner) { p.now = now }
}

// NewPruner creates a Pruner.
func NewPruner(opts ...Option) *Pruner {
	p := &Pruner{
		sink: Discard,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.base == nil {
		p.base = logging.FromSlog(slog.Default())
	}
	p.logger = p.base.With("component", "prune")
	return p
}

// Run evaluates one job. A job that fails validation returns an error
// before its source is listed and before anything reaches the sink.
func (p *Pruner) Run(ctx context.Context, job *Job) (*Report, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Job:     job.Name,
		Source:  job.Source.Name(),
		Started: p.now(),
	}
	if job.Explain {
		report.Schedule = job.Schedule
	}

	ctx = logging.WithJob(logging.WithRunID(ctx, report.RunID), job.Name)
	ctx, span := p.tracer.Start(ctx, tracing.SpanPruneRun)
	defer span.End()
	span.SetAttributes(
		tracing.AttrJob.String(job.Name),
		tracing.AttrSource.String(report.Source),
		tracing.AttrRunID.String(report.RunID),
	)

	p.logger.DebugContext(ctx, "prune run started", "source", report.Source, "schedule", job.Schedule.String())

	err := p.evaluate(ctx, job, report)
	report.Duration = p.now().Sub(report.Started)
	if err == nil {
		err = p.sink.Emit(ctx, report)
	}
	tracing.SetStatus(span, err)
	span.SetAttributes(
		tracing.AttrKept.Int(len(report.Kept)),
		tracing.AttrDropped.Int(len(report.Dropped)),
		tracing.AttrWarnings.Int(len(report.Warnings)),
	)

	status := journal.StatusOK
	if err != nil {
		status = journal.StatusError
	}
	p.metrics.RecordRun(job.Name, status, len(report.Kept), len(report.Dropped), len(report.Warnings), report.Duration)
	p.record(ctx, report.journalRun(status, err))

	if err != nil {
		p.logger.ErrorContext(ctx, "prune run failed", "error", err)
		return report, err
	}

	for _, w := range report.Warnings {
		p.logger.DebugContext(ctx, "skipped entry", "name", w.Name, "reason", w.Err)
	}
	p.logger.InfoContext(ctx, "prune run completed",
		"kept", len(report.Kept),
		"dropped", len(report.Dropped),
		"warnings", len(report.Warnings),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

func (p *Pruner) evaluate(ctx context.Context, job *Job, report *Report) error {
	listing, err := job.Source.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", report.Source, err)
	}

	entries, dupes := source.Collect(listing.Entries)
	report.Warnings = append(append(report.Warnings, listing.Warnings...), dupes...)

	_, span := p.tracer.Start(ctx, tracing.SpanRetentionEvaluate)
	defer span.End()
	span.SetAttributes(
		tracing.AttrEntries.Int(len(entries)),
		tracing.AttrPolicies.Int(len(job.Schedule)),
		tracing.AttrAlignment.String(job.Alignment.String()),
	)

	opts := []retention.Option{retention.WithAlignment(job.Alignment)}
	if job.Explain {
		opts = append(opts, retention.WithTrace())
	}
	result, err := retention.Evaluate(job.Schedule, entries, opts...)
	tracing.SetStatus(span, err)
	if err != nil {
		return err
	}

	report.Kept = sortedEntries(result.Keep)
	report.Dropped = sortedEntries(result.Drop)
	report.Buckets = result.Buckets
	return nil
}

func (p *Pruner) record(ctx context.Context, run *journal.Run) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Record(ctx, run); err != nil {
		p.logger.ErrorContext(ctx, "failed to record run", "error", err)
	}
}

// TrimJournal removes journal runs older than historyDays. Zero keeps
// everything.
func (p *Pruner) TrimJournal(ctx context.Context, historyDays int) (int64, error) {
	if p.journal == nil || historyDays <= 0 {
		return 0, nil
	}
	cutoff := p.now().AddDate(0, 0, -historyDays)
	n, err := p.journal.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to trim journal: %w", err)
	}
	p.metrics.RecordJournalPruned(n)
	if n > 0 {
		p.logger.InfoContext(ctx, "trimmed journal", "removed", n, "cutoff", cutoff)
	}
	return n, nil
}
