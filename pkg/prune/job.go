package prune

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/source"
)

// Job is one snapshot set and the schedule applied to it.
type Job struct {
	// Name identifies the job in logs, metrics and the journal.
	Name string

	// Source lists the snapshots.
	Source source.Source

	// Schedule is the ordered list of retention policies.
	Schedule retention.Schedule

	// Alignment selects how bucket boundaries are placed.
	Alignment retention.Alignment

	// Explain records every bucket decision in the report.
	Explain bool

	// Cron is the schedule for Scheduler. Empty means run on demand only.
	Cron string

	// WatchPath, when set, is the directory Watcher observes for this job.
	WatchPath string
}

// Validate checks the job before anything is listed.
func (j *Job) Validate() error {
	if j.Source == nil {
		return fmt.Errorf("job %q: no source", j.Name)
	}
	if err := j.Schedule.Validate(); err != nil {
		return fmt.Errorf("job %q: %w", j.Name, err)
	}
	return nil
}

// BuildOptions supplies what JobFromConfig cannot read from configuration.
type BuildOptions struct {
	// Stdin backs "stdin" sources.
	Stdin io.Reader
}

// JobFromConfig builds a Job and its Source from configuration.
func JobFromConfig(ctx context.Context, jc *config.JobConfig, opts BuildOptions) (*Job, error) {
	schedule, err := jc.RetentionSchedule()
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", jc.Name, err)
	}
	alignment, err := retention.ParseAlignment(jc.Alignment)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", jc.Name, err)
	}
	parser, err := source.NewTimeParser(jc.Format,
		source.WithPrefix(jc.Prefix),
		source.WithSuffix(jc.Suffix),
	)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", jc.Name, err)
	}

	job := &Job{
		Name:      jc.Name,
		Schedule:  schedule,
		Alignment: alignment,
		Cron:      jc.Cron,
	}

	sc := jc.Source
	switch sc.Type {
	case "", "stdin":
		if opts.Stdin == nil {
			return nil, fmt.Errorf("job %q: stdin source without an input", jc.Name)
		}
		job.Source = source.NewReaderSource("stdin", opts.Stdin, parser)
	case "dir":
		dir := source.NewDirSource(sc.Path, parser)
		dir.Match = sc.Match
		dir.FullPath = sc.FullPath
		job.Source = dir
		if jc.Watch {
			job.WatchPath = sc.Path
		}
	case "s3":
		s3src, err := source.NewS3Source(ctx, source.S3Config{
			Bucket:          sc.Bucket,
			Prefix:          sc.Prefix,
			Region:          sc.Region,
			Endpoint:        sc.Endpoint,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
			UsePathStyle:    sc.PathStyle,
		}, parser)
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", jc.Name, err)
		}
		job.Source = s3src
	default:
		return nil, fmt.Errorf("job %q: %w: %q", jc.Name, ErrUnknownSource, sc.Type)
	}
	return job, nil
}

// ErrUnknownSource is returned for an unsupported source type.
var ErrUnknownSource = errors.New("unknown source type")
