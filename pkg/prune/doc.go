// Package prune runs retention jobs.
//
// A Job names a Source and a retention schedule. Pruner.Run lists the
// source, evaluates the schedule and hands the resulting Report to a Sink,
// which for the CLI prints the names to drop on stdout. Nothing is ever
// deleted here; removing the dropped snapshots is left to whatever reads
// the list.
//
// Runs are recorded in the journal, counted in Prometheus metrics and
// traced when those are configured:
//
//	pruner := prune.NewPruner(
//	    prune.WithSink(prune.NewWriterSink(os.Stdout, os.Stderr)),
//	    prune.WithJournal(store),
//	    prune.WithMetrics(collector),
//	)
//	report, err := pruner.Run(ctx, job)
//
// For long-running operation a Scheduler triggers jobs on cron schedules
// and a Watcher re-runs directory jobs when the directory changes.
package prune
