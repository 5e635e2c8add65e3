package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/journal"
	"mercator-hq/retain/pkg/prune"
	"mercator-hq/retain/pkg/telemetry/health"
	"mercator-hq/retain/pkg/telemetry/logging"
	"mercator-hq/retain/pkg/telemetry/metrics"
	"mercator-hq/retain/pkg/telemetry/tracing"
)

type runFlags struct {
	once     bool
	json     bool
	logLevel string
	debounce time.Duration
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every configured job",
		Long: `Run the jobs defined in the configuration file.

With --once every job is evaluated a single time and the command exits.
Otherwise jobs with a schedule run on it, jobs with watch enabled run
whenever their directory changes, and the journal is trimmed on its own
schedule. Metrics are served while running if enabled. SIGINT or SIGTERM
stops everything after in-flight runs finish.

Examples:
  # Evaluate all jobs once
  retain run --once

  # Run as a service
  retain run --config /etc/retain/retain.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd, f)
		},
	}

	cmd.Flags().BoolVar(&f.once, "once", false, "run every job once and exit")
	cmd.Flags().BoolVar(&f.json, "json", false, "print JSON reports instead of names")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.Flags().DurationVar(&f.debounce, "debounce", prune.DefaultDebounce, "quiet period before a watched directory triggers a run")
	return cmd
}

func runJobs(cmd *cobra.Command, f *runFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Jobs) == 0 {
		return cli.NewConfigError("jobs", "no jobs configured")
	}
	if f.logLevel != "" {
		cfg.Telemetry.Logging.Level = f.logLevel
	} else if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := newLogger(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := cli.SetupSignalHandler(parent)
	defer stop()

	jobs := make([]*prune.Job, 0, len(cfg.Jobs))
	for i := range cfg.Jobs {
		job, err := prune.JobFromConfig(ctx, &cfg.Jobs[i], prune.BuildOptions{Stdin: cmd.InOrStdin()})
		if err != nil {
			return cli.NewConfigError("jobs", err.Error())
		}
		jobs = append(jobs, job)
	}

	var sink prune.Sink = prune.NewWriterSink(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if f.json {
		sink = &prune.JSONSink{Out: cmd.OutOrStdout()}
	}
	opts := []prune.Option{prune.WithLogger(logger), prune.WithSink(&lockedSink{sink: sink})}
	checker := health.New(5 * time.Second)

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Driver, cfg.Journal.Path, cfg.Journal.BusyTimeout)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()
		opts = append(opts, prune.WithJournal(store))
		checker.RegisterCheck("journal", func(ctx context.Context) error {
			_, err := store.List(ctx, journal.Query{Limit: 1})
			return err
		})
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer shutdownTracer(ctx, tracer, logger)
	opts = append(opts, prune.WithTracer(tracer))

	if cfg.Telemetry.Metrics.Enabled {
		collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
		opts = append(opts, prune.WithMetrics(collector))
		if !f.once {
			srv := collector.NewServer(cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path,
				func(mux *http.ServeMux) { health.Mount(mux, checker, Version, GitCommit, BuildDate) })
			go serveMetrics(srv, logger)
			defer shutdownServer(srv, logger)
		}
	}

	pruner := prune.NewPruner(opts...)

	if f.once {
		return runOnce(ctx, pruner, jobs)
	}
	return serve(ctx, cfg, pruner, jobs, f.debounce, checker, logger)
}

// runOnce runs every job in order and reports all failures together.
func runOnce(ctx context.Context, pruner *prune.Pruner, jobs []*prune.Job) error {
	var errs []error
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		if _, err := pruner.Run(ctx, job); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, pruner *prune.Pruner, jobs []*prune.Job, debounce time.Duration, checker *health.Checker, logger *logging.Logger) error {
	scheduler := prune.NewScheduler(pruner)
	checker.RegisterCheck("scheduler", func(context.Context) error {
		if !scheduler.IsRunning() {
			return errors.New("scheduler is not running")
		}
		return nil
	})
	var watchers []*prune.Watcher

	for _, job := range jobs {
		if err := scheduler.Add(job); err != nil {
			return cli.NewConfigError("jobs", err.Error())
		}
		if job.WatchPath == "" {
			continue
		}
		w, err := prune.NewWatcher(pruner, job, debounce)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		watchers = append(watchers, w)
	}

	if cfg.Journal.Enabled && cfg.Journal.HistoryDays > 0 {
		days := cfg.Journal.HistoryDays
		err := scheduler.AddFunc("journal-trim", cfg.Journal.PruneSchedule, func(ctx context.Context) {
			if _, err := pruner.TrimJournal(ctx, days); err != nil {
				logger.Error("journal trim failed", "error", err)
			}
		})
		if err != nil {
			return cli.NewConfigError("journal.prune_schedule", err.Error())
		}
	}

	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer scheduler.Stop()

	var wg sync.WaitGroup
	for _, w := range watchers {
		wg.Add(1)
		go func(w *prune.Watcher) {
			defer wg.Done()
			if err := w.Watch(ctx); err != nil {
				logger.Error("watcher stopped", "error", err)
			}
		}(w)
	}

	logger.Info("retain running", "jobs", len(jobs), "watchers", len(watchers))
	for _, job := range jobs {
		if job.Cron != "" {
			continue
		}
		if _, err := pruner.Run(ctx, job); err != nil {
			logger.Error("startup run failed", "job", job.Name, "error", err)
		}
	}
	for _, job := range jobs {
		if next := scheduler.NextRun(job.Name); next != nil {
			logger.Debug("job scheduled", "job", job.Name, "next_run", next)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")
	for _, w := range watchers {
		if err := w.Stop(); err != nil {
			logger.Warn("failed to stop watcher", "error", err)
		}
	}
	wg.Wait()
	return nil
}

func serveMetrics(srv *http.Server, logger *logging.Logger) {
	logger.Info("serving metrics", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}

func shutdownServer(srv *http.Server, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown failed", "error", err)
	}
}

// lockedSink serializes reports from concurrently running jobs so their
// output does not interleave.
type lockedSink struct {
	mu   sync.Mutex
	sink prune.Sink
}

func (s *lockedSink) Emit(ctx context.Context, r *prune.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sink.Emit(ctx, r); err != nil {
		return fmt.Errorf("job %s: %w", r.Job, err)
	}
	return nil
}
