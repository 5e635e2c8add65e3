package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/journal"
	"mercator-hq/retain/pkg/prune"
	"mercator-hq/retain/pkg/telemetry/logging"
	"mercator-hq/retain/pkg/telemetry/tracing"
)

type pruneFlags struct {
	policies  policyFlag
	format    string
	prefix    string
	suffix    string
	align     string
	name      string
	job       string
	dir       string
	match     string
	fullPath  bool
	s3        config.SourceConfig
	json      bool
	explain   bool
	journal   string
	logLevel  string
	logFormat string
}

func newPruneCmd() *cobra.Command {
	f := &pruneFlags{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Print the snapshots that no policy keeps",
		Long: `Evaluate retention policies against a list of snapshot names and print
the names to delete, one per line, oldest first.

Names are read from stdin unless --dir or --s3-bucket is given. Lines that
do not match the time format are reported on stderr and never deleted.

Each -p takes an interval and a count. Intervals are seconds ("86400"),
days or weeks ("1d", "2w") or Go durations ("36h").

Examples:
  # Keep one snapshot per day for a week and one per week for two months
  ls /backups | retain prune -p 1d 7 -p 1w 8

  # Same, reading the directory directly and listing what is kept
  retain prune --dir /backups -p 1d 7 -p 1w 8 -v

  # Names like db-20240101-03:00.tar
  retain prune --dir /backups --match 'db-*' --prefix db- --suffix .tar -p 1d 30

  # Run a job defined in the config file
  retain prune --config retain.yaml --job db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.VarP(&f.policies, "policy", "p", "retention policy as <interval> <count> (repeatable)")
	flags.StringVarP(&f.format, "format", "f", config.DefaultFormat, "strftime format of snapshot names")
	flags.StringVar(&f.prefix, "prefix", "", "prefix stripped from names before parsing")
	flags.StringVar(&f.suffix, "suffix", "", "suffix stripped from names before parsing")
	flags.StringVar(&f.align, "align", config.DefaultAlignment, "bucket alignment: anchor, interval")
	flags.StringVar(&f.name, "name", "prune", "job name used in logs and the journal")
	flags.StringVar(&f.job, "job", "", "run the named job from the config file")
	flags.StringVar(&f.dir, "dir", "", "list snapshots from a directory instead of stdin")
	flags.StringVar(&f.match, "match", "", "glob directory entries must match")
	flags.BoolVar(&f.fullPath, "full-path", false, "print full paths for directory entries")
	flags.StringVar(&f.s3.Bucket, "s3-bucket", "", "list snapshots from an S3 bucket")
	flags.StringVar(&f.s3.Prefix, "s3-prefix", "", "key prefix within the bucket")
	flags.StringVar(&f.s3.Region, "s3-region", "", "S3 region")
	flags.StringVar(&f.s3.Endpoint, "s3-endpoint", "", "custom S3 endpoint URL")
	flags.BoolVar(&f.s3.PathStyle, "s3-path-style", false, "use path-style S3 addressing")
	flags.BoolVar(&f.json, "json", false, "print a JSON report instead of names")
	flags.BoolVar(&f.explain, "explain", false, "print every bucket decision to stderr")
	flags.StringVar(&f.journal, "journal", "", "record the run in this SQLite file (\"memory\" for none)")
	flags.StringVar(&f.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&f.logFormat, "log-format", config.DefaultLoggingFormat, "log format (text, json)")

	cmd.MarkFlagsMutuallyExclusive("dir", "s3-bucket")
	cmd.MarkFlagsMutuallyExclusive("job", "policy")
	return cmd
}

func runPrune(cmd *cobra.Command, f *pruneFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Everything that can be misconfigured is checked before the source is
	// read, so a bad invocation prints nothing to stdout.
	var (
		cfg *config.Config
		jc  *config.JobConfig
		err error
	)
	if f.job != "" {
		if cfg, err = loadConfig(); err != nil {
			return err
		}
		var ok bool
		if jc, ok = cfg.Job(f.job); !ok {
			return cli.NewConfigError("--job", fmt.Sprintf("no job named %q in %s", f.job, config.LoadedPath()))
		}
	} else {
		if jc, err = f.jobConfig(); err != nil {
			return err
		}
	}

	job, err := prune.JobFromConfig(ctx, jc, prune.BuildOptions{Stdin: cmd.InOrStdin()})
	if err != nil {
		return cli.NewConfigError("prune", err.Error())
	}
	job.Explain = f.explain

	logCfg := config.LoggingConfig{Level: f.logLevel, Format: f.logFormat}
	if cfg != nil && !cmd.Flags().Changed("log-level") {
		logCfg = cfg.Telemetry.Logging
	}
	logger, err := newLogger(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts := []prune.Option{
		prune.WithLogger(logger),
		prune.WithSink(f.sink(cmd)),
	}

	store, err := f.openJournal(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, prune.WithJournal(store))
	}

	if cfg != nil {
		tracer, err := tracing.New(&cfg.Telemetry.Tracing)
		if err != nil {
			return cli.NewConfigError("telemetry.tracing", err.Error())
		}
		defer shutdownTracer(ctx, tracer, logger)
		opts = append(opts, prune.WithTracer(tracer))
	}

	if _, err := prune.NewPruner(opts...).Run(ctx, job); err != nil {
		return cli.NewCommandError("prune", err)
	}
	return nil
}

// jobConfig assembles an ad-hoc job from flags.
func (f *pruneFlags) jobConfig() (*config.JobConfig, error) {
	schedule, err := f.policies.schedule()
	if err != nil {
		return nil, cli.NewConfigError("-p", err.Error())
	}

	jc := &config.JobConfig{
		Name:      f.name,
		Format:    f.format,
		Prefix:    f.prefix,
		Suffix:    f.suffix,
		Alignment: f.align,
		Source:    config.SourceConfig{Type: "stdin"},
	}
	for _, p := range schedule {
		jc.Policies = append(jc.Policies, config.PolicyConfig{
			Interval: fmt.Sprint(p.Interval),
			Count:    p.Count,
		})
	}

	switch {
	case f.dir != "":
		jc.Source = config.SourceConfig{Type: "dir", Path: f.dir, Match: f.match, FullPath: f.fullPath}
	case f.s3.Bucket != "":
		jc.Source = f.s3
		jc.Source.Type = "s3"
	}
	return jc, nil
}

func (f *pruneFlags) sink(cmd *cobra.Command) prune.Sink {
	if f.json {
		return &prune.JSONSink{Out: cmd.OutOrStdout()}
	}
	s := prune.NewWriterSink(cmd.OutOrStdout(), cmd.ErrOrStderr())
	s.Verbose = verbose
	s.Explain = f.explain
	return s
}

// openJournal returns the store selected by --journal, or the configured
// one when running a config job. Nil means no journal.
func (f *pruneFlags) openJournal(cfg *config.Config) (journal.Store, error) {
	switch {
	case f.journal != "":
		driver := config.DefaultJournalDriver
		if f.journal == "memory" {
			driver = "memory"
		}
		store, err := journal.Open(driver, f.journal, config.DefaultJournalBusyTimeout)
		if err != nil {
			return nil, cli.NewConfigError("--journal", err.Error())
		}
		return store, nil
	case cfg != nil && cfg.Journal.Enabled:
		store, err := journal.Open(cfg.Journal.Driver, cfg.Journal.Path, cfg.Journal.BusyTimeout)
		if err != nil {
			return nil, cli.NewConfigError("journal", err.Error())
		}
		return store, nil
	default:
		return nil, nil
	}
}

func shutdownTracer(ctx context.Context, tracer *tracing.Tracer, logger *logging.Logger) {
	if err := tracer.Shutdown(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("failed to shut down tracer", "error", err)
	}
}
