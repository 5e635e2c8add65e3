package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/journal"
)

type historyFlags struct {
	job     string
	since   time.Duration
	limit   int
	output  string
	journal string
	driver  string
}

func newHistoryCmd() *cobra.Command {
	f := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs from the journal",
		Long: `List past runs recorded in the journal, newest first.

The journal location comes from the configuration file unless --journal
is given. Without --journal the configuration must enable the journal.

Examples:
  # Last 20 runs of every job
  retain history

  # Runs of one job in the last three days, as CSV
  retain history --job db --since 72h --output csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.job, "job", "", "only show runs of this job")
	cmd.Flags().DurationVar(&f.since, "since", 0, "only show runs newer than this (e.g. 24h)")
	cmd.Flags().IntVar(&f.limit, "limit", 20, "maximum number of runs")
	cmd.Flags().StringVarP(&f.output, "output", "o", "text", "output format: text, json, csv")
	cmd.Flags().StringVar(&f.journal, "journal", "", "journal file (overrides config)")
	cmd.Flags().StringVar(&f.driver, "driver", config.DefaultJournalDriver, "SQLite driver for --journal: sqlite, sqlite3")
	return cmd
}

func runHistory(cmd *cobra.Command, f *historyFlags) error {
	format, err := cli.ParseOutputFormat(f.output)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return err
	}

	driver, path, timeout := f.driver, f.journal, config.DefaultJournalBusyTimeout
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Journal.Enabled {
			return cli.NewConfigError("journal.enabled", "journal is disabled")
		}
		driver, path, timeout = cfg.Journal.Driver, cfg.Journal.Path, cfg.Journal.BusyTimeout
	}

	store, err := journal.Open(driver, path, timeout)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	q := journal.Query{Job: f.job, Limit: f.limit}
	if f.since > 0 {
		q.Since = time.Now().Add(-f.since)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := store.List(ctx, q)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	var data any = historyTable(runs)
	if format == cli.FormatJSON {
		data = runs
	}
	if err := formatter.FormatTo(cmd.OutOrStdout(), data); err != nil {
		return cli.NewCommandError("history", fmt.Errorf("failed to write output: %w", err))
	}
	return nil
}

// historyTable renders journal runs as rows.
type historyTable []*journal.Run

func (h historyTable) Header() []string {
	return []string{"started", "job", "status", "kept", "dropped", "warnings", "duration", "error"}
}

func (h historyTable) Rows() [][]string {
	rows := make([][]string, len(h))
	for i, r := range h {
		rows[i] = []string{
			r.StartedAt.UTC().Format(time.RFC3339),
			r.Job,
			r.Status,
			strconv.Itoa(r.Kept),
			strconv.Itoa(r.Dropped),
			strconv.Itoa(r.Warnings),
			r.Duration.Round(time.Millisecond).String(),
			r.Error,
		}
	}
	return rows
}
