package prune

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/journal"
	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/source"
	"mercator-hq/retain/pkg/telemetry/logging"
	"mercator-hq/retain/pkg/telemetry/metrics"
	"mercator-hq/retain/pkg/telemetry/tracing"
)

// minutes lists eleven snapshots one minute apart.
func minutes() string {
	var b strings.Builder
	for i := 0; i <= 10; i++ {
		fmt.Fprintf(&b, "20200101-00:%02d\n", i)
	}
	return b.String()
}

var wantDropped = []string{
	"20200101-00:00", "20200101-00:01", "20200101-00:02", "20200101-00:03",
	"20200101-00:04", "20200101-00:05", "20200101-00:06", "20200101-00:08",
	"20200101-00:09",
}

func testJob(t *testing.T, input string) *Job {
	t.Helper()
	parser, err := source.NewTimeParser("")
	if err != nil {
		t.Fatalf("NewTimeParser() error = %v", err)
	}
	return &Job{
		Name:     "db",
		Source:   source.NewReaderSource("stdin", strings.NewReader(input), parser),
		Schedule: retention.Schedule{{Interval: 180, Count: 2}},
	}
}

func quietLogger() *logging.Logger {
	return logging.FromSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type failingSource struct {
	listed bool
}

func (f *failingSource) Name() string { return "broken" }

func (f *failingSource) List(context.Context) (*source.Listing, error) {
	f.listed = true
	return nil, errors.New("permission denied")
}

func TestPruner_Run(t *testing.T) {
	var out, errOut bytes.Buffer
	sink := NewWriterSink(&out, &errOut)
	sink.Verbose = true

	p := NewPruner(WithSink(sink), WithLogger(quietLogger()))
	report, err := p.Run(context.Background(), testJob(t, minutes()+"garbage\n"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := strings.Join(report.DroppedNames(), ","); got != strings.Join(wantDropped, ",") {
		t.Errorf("DroppedNames() = %s", got)
	}
	if got := out.String(); got != strings.Join(wantDropped, "\n")+"\n" {
		t.Errorf("stdout = %q", got)
	}

	wantErr := "Could not parse line: 'garbage'\nKeep 20200101-00:07\nKeep 20200101-00:10\n"
	if got := errOut.String(); got != wantErr {
		t.Errorf("stderr = %q, want %q", got, wantErr)
	}
	if report.RunID == "" {
		t.Error("report has no run ID")
	}
	if report.Buckets != nil {
		t.Errorf("Buckets = %v without Explain", report.Buckets)
	}
}

func TestPruner_Run_Explain(t *testing.T) {
	var out, errOut bytes.Buffer
	sink := NewWriterSink(&out, &errOut)
	sink.Explain = true

	job := testJob(t, minutes())
	job.Explain = true

	report, err := NewPruner(WithSink(sink), WithLogger(quietLogger())).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Buckets) != 2 {
		t.Fatalf("len(Buckets) = %d, want 2", len(report.Buckets))
	}

	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("explain output = %q, want two lines", errOut.String())
	}
	if !strings.HasPrefix(lines[0], "Bucket 180s x2 [0]") || !strings.HasSuffix(lines[0], "satisfied 20200101-00:10") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "filled 20200101-00:07") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestPruner_Run_Duplicates(t *testing.T) {
	var out, errOut bytes.Buffer
	input := "20200101-00:00\n2020010100:00 ignored\n20200101-00:05\n20200101-00:05\n"

	report, err := NewPruner(WithSink(NewWriterSink(&out, &errOut)), WithLogger(quietLogger())).
		Run(context.Background(), testJob(t, input))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("len(Warnings) = %d, want 2", len(report.Warnings))
	}
	if !errors.Is(report.Warnings[1], source.ErrDuplicate) {
		t.Errorf("Warnings[1] = %v, want a duplicate", report.Warnings[1])
	}
	want := "Could not parse line: '2020010100:00 ignored'\nDuplicate timestamp, ignoring line: '20200101-00:05'\n"
	if got := errOut.String(); got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
	if got := out.String(); got != "" {
		t.Errorf("stdout = %q, want nothing dropped", got)
	}
}

func TestPruner_Run_InvalidJob(t *testing.T) {
	src := &failingSource{}
	called := false
	sink := SinkFunc(func(context.Context, *Report) error {
		called = true
		return nil
	})

	_, err := NewPruner(WithSink(sink), WithLogger(quietLogger())).
		Run(context.Background(), &Job{Name: "db", Source: src})
	if !errors.Is(err, retention.ErrNoPolicies) {
		t.Fatalf("Run() error = %v, want ErrNoPolicies", err)
	}
	if src.listed {
		t.Error("source was listed for an invalid job")
	}
	if called {
		t.Error("sink received a report for an invalid job")
	}

	_, err = NewPruner(WithLogger(quietLogger())).Run(context.Background(), &Job{
		Name:     "db",
		Source:   src,
		Schedule: retention.Schedule{{Interval: 0, Count: 1}},
	})
	if !errors.Is(err, retention.ErrZeroInterval) {
		t.Fatalf("Run() error = %v, want ErrZeroInterval", err)
	}
}

func TestPruner_Run_SourceError(t *testing.T) {
	store := journal.NewMemoryStore()
	called := false
	sink := SinkFunc(func(context.Context, *Report) error {
		called = true
		return nil
	})

	p := NewPruner(WithSink(sink), WithJournal(store), WithLogger(quietLogger()))
	_, err := p.Run(context.Background(), &Job{
		Name:     "db",
		Source:   &failingSource{},
		Schedule: retention.Schedule{{Interval: 60, Count: 1}},
	})
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("Run() error = %v, want the listing failure", err)
	}
	if called {
		t.Error("sink received a report for a failed run")
	}

	runs, err := store.List(context.Background(), journal.Query{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Status != journal.StatusError {
		t.Fatalf("journal = %+v, want one failed run", runs)
	}
	if !strings.Contains(runs[0].Error, "permission denied") {
		t.Errorf("journal error = %q", runs[0].Error)
	}
}

func TestPruner_Run_Journal(t *testing.T) {
	store := journal.NewMemoryStore()
	started := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	p := NewPruner(
		WithJournal(store),
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return started }),
	)

	report, err := p.Run(context.Background(), testJob(t, minutes()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runs, err := store.List(context.Background(), journal.Query{Job: "db"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != report.RunID || run.Status != journal.StatusOK {
		t.Errorf("run = %+v", run)
	}
	if run.Kept != 2 || run.Dropped != 9 || len(run.DroppedNames) != 9 {
		t.Errorf("run counts kept=%d dropped=%d names=%d", run.Kept, run.Dropped, len(run.DroppedNames))
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, started)
	}
}

func TestPruner_Run_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{}, registry)

	p := NewPruner(WithMetrics(collector), WithLogger(quietLogger()))
	if _, err := p.Run(context.Background(), testJob(t, minutes())); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	expected := `
# HELP retain_prune_entries Entries kept and dropped by the most recent run
# TYPE retain_prune_entries gauge
retain_prune_entries{job="db",partition="drop"} 9
retain_prune_entries{job="db",partition="keep"} 2
# HELP retain_prune_runs_total Total number of prune runs
# TYPE retain_prune_runs_total counter
retain_prune_runs_total{job="db",status="ok"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"retain_prune_entries", "retain_prune_runs_total"); err != nil {
		t.Error(err)
	}
}

func TestPruner_Run_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	p := NewPruner(WithTracer(tracing.WithProvider(tp)), WithLogger(quietLogger()))
	report, err := p.Run(context.Background(), testJob(t, minutes()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	eval, run := spans[0], spans[1]
	if eval.Name() != tracing.SpanRetentionEvaluate || run.Name() != tracing.SpanPruneRun {
		t.Fatalf("spans = %s, %s", eval.Name(), run.Name())
	}
	if eval.Parent().SpanID() != run.SpanContext().SpanID() {
		t.Error("evaluate span is not a child of the run span")
	}

	attrs := make(map[string]string)
	for _, kv := range run.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[string(tracing.AttrRunID)] != report.RunID {
		t.Errorf("run_id attribute = %q, want %q", attrs[string(tracing.AttrRunID)], report.RunID)
	}
	if attrs[string(tracing.AttrDropped)] != "9" {
		t.Errorf("dropped attribute = %q, want 9", attrs[string(tracing.AttrDropped)])
	}
}

func TestPruner_Run_SinkError(t *testing.T) {
	store := journal.NewMemoryStore()
	sink := SinkFunc(func(context.Context, *Report) error { return errors.New("broken pipe") })

	_, err := NewPruner(WithSink(sink), WithJournal(store), WithLogger(quietLogger())).
		Run(context.Background(), testJob(t, minutes()))
	if err == nil {
		t.Fatal("Run() error = nil, want the sink failure")
	}
	runs, _ := store.List(context.Background(), journal.Query{})
	if len(runs) != 1 || runs[0].Status != journal.StatusError {
		t.Errorf("journal = %+v, want one failed run", runs)
	}
}

func TestPruner_TrimJournal(t *testing.T) {
	store := journal.NewMemoryStore()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i, age := range []int{1, 10, 40} {
		run := &journal.Run{
			ID:        fmt.Sprintf("run-%d", i),
			Job:       "db",
			StartedAt: now.AddDate(0, 0, -age),
			Status:    journal.StatusOK,
		}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	p := NewPruner(WithJournal(store), WithLogger(quietLogger()), WithClock(func() time.Time { return now }))
	n, err := p.TrimJournal(ctx, 30)
	if err != nil {
		t.Fatalf("TrimJournal() error = %v", err)
	}
	if n != 1 {
		t.Errorf("TrimJournal() = %d, want 1", n)
	}
	if n, _ := p.TrimJournal(ctx, 0); n != 0 {
		t.Errorf("TrimJournal(0) = %d, want 0", n)
	}
	if n, _ := NewPruner(WithLogger(quietLogger())).TrimJournal(ctx, 30); n != 0 {
		t.Errorf("TrimJournal() without a journal = %d, want 0", n)
	}
}

func TestJSONSink(t *testing.T) {
	var out bytes.Buffer
	p := NewPruner(WithSink(&JSONSink{Out: &out}), WithLogger(quietLogger()))
	if _, err := p.Run(context.Background(), testJob(t, minutes()+"garbage\n")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var doc struct {
		Job          string   `json:"job"`
		RunID        string   `json:"run_id"`
		DroppedNames []string `json:"dropped_names"`
		KeptNames    []string `json:"kept_names"`
		Warnings     []string `json:"warnings"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if doc.Job != "db" || doc.RunID == "" {
		t.Errorf("job=%q run_id=%q", doc.Job, doc.RunID)
	}
	if len(doc.DroppedNames) != 9 || len(doc.KeptNames) != 2 {
		t.Errorf("dropped=%v kept=%v", doc.DroppedNames, doc.KeptNames)
	}
	if len(doc.Warnings) != 1 || doc.Warnings[0] != "garbage" {
		t.Errorf("warnings = %v", doc.Warnings)
	}
}

func TestMultiSink(t *testing.T) {
	var calls []string
	record := func(name string, err error) Sink {
		return SinkFunc(func(context.Context, *Report) error {
			calls = append(calls, name)
			return err
		})
	}

	err := MultiSink(record("a", nil), record("b", errors.New("b failed")), record("c", nil)).
		Emit(context.Background(), &Report{})
	if err == nil || err.Error() != "b failed" {
		t.Errorf("Emit() error = %v, want b failed", err)
	}
	if strings.Join(calls, ",") != "a,b" {
		t.Errorf("calls = %v, want a,b", calls)
	}
}
