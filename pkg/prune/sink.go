package prune

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/source"
)

// Sink receives the report of every run.
type Sink interface {
	Emit(ctx context.Context, r *Report) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r *Report) error

// Emit implements Sink.
func (f SinkFunc) Emit(ctx context.Context, r *Report) error {
	return f(ctx, r)
}

// Discard is a Sink that does nothing.
var Discard Sink = SinkFunc(func(context.Context, *Report) error { return nil })

// WriterSink prints reports in the line format downstream tools consume:
// one dropped name per line on Out. Diagnostics go to Err: a line per
// skipped name, "Keep <name>" per kept entry when Verbose is set, and the
// bucket trace when Explain is set.
type WriterSink struct {
	Out     io.Writer
	Err     io.Writer
	Verbose bool
	Explain bool
}

// NewWriterSink creates a WriterSink.
func NewWriterSink(out, errOut io.Writer) *WriterSink {
	return &WriterSink{Out: out, Err: errOut}
}

// Emit implements Sink.
func (s *WriterSink) Emit(ctx context.Context, r *Report) error {
	diag := bufio.NewWriter(s.Err)
	for _, w := range r.Warnings {
		if errors.Is(w.Err, source.ErrDuplicate) {
			fmt.Fprintf(diag, "Duplicate timestamp, ignoring line: '%s'\n", w.Name)
			continue
		}
		fmt.Fprintf(diag, "Could not parse line: '%s'\n", w.Name)
	}
	if err := diag.Flush(); err != nil {
		return fmt.Errorf("failed to write diagnostics: %w", err)
	}

	out := bufio.NewWriter(s.Out)
	for _, e := range r.Dropped {
		fmt.Fprintln(out, e.Name)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write drop list: %w", err)
	}

	if s.Verbose {
		for _, e := range r.Kept {
			fmt.Fprintf(diag, "Keep %s\n", e.Name)
		}
	}
	if s.Explain {
		s.explain(diag, r)
	}
	return diag.Flush()
}

func (s *WriterSink) explain(w io.Writer, r *Report) {
	names := make(map[retention.Timestamp]string, len(r.Kept))
	for _, e := range r.Kept {
		names[e.Timestamp] = e.Name
	}

	for _, b := range r.Buckets {
		policy := fmt.Sprintf("#%d", b.Policy)
		if b.Policy < len(r.Schedule) {
			policy = r.Schedule[b.Policy].String()
		}
		line := fmt.Sprintf("Bucket %s [%d] %s %s", policy, b.Index, b.Window, b.Outcome)
		if b.Outcome != retention.BucketEmpty {
			line += " " + names[b.Timestamp]
		}
		fmt.Fprintln(w, line)
	}
}

// JSONSink writes each report as one JSON document.
type JSONSink struct {
	Out    io.Writer
	Indent bool
}

type jsonReport struct {
	*Report
	DroppedNames []string `json:"dropped_names"`
	KeptNames    []string `json:"kept_names"`
	Warnings     []string `json:"warnings"`
}

// Emit implements Sink.
func (s *JSONSink) Emit(ctx context.Context, r *Report) error {
	enc := json.NewEncoder(s.Out)
	if s.Indent {
		enc.SetIndent("", "  ")
	}
	doc := jsonReport{
		Report:       r,
		DroppedNames: r.DroppedNames(),
		KeptNames:    r.KeptNames(),
		Warnings:     r.WarningNames(),
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// MultiSink fans a report out to several sinks, stopping at the first
// error.
func MultiSink(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, r *Report) error {
		for _, s := range sinks {
			if err := s.Emit(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
}
