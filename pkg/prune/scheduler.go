package prune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrSchedulerRunning is returned when registering work on a started
// Scheduler.
var ErrSchedulerRunning = errors.New("scheduler already running")

// Scheduler runs jobs on their cron schedules.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
//
// A job that is still running when its next tick arrives skips that tick.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
	entries map[string]cron.EntryID
	pending []scheduled
}

type scheduled struct {
	name string
	spec string
	run  func(ctx context.Context)
}

// NewScheduler creates a scheduler running jobs through pruner.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DiscardLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		logger:  pruner.base.Slog().With("component", "prune.scheduler"),
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers job on its Cron expression. Jobs without one are skipped.
func (s *Scheduler) Add(job *Job) error {
	if job.Cron == "" {
		s.logger.Info("job has no schedule, skipping", "job", job.Name)
		return nil
	}
	return s.AddFunc(job.Name, job.Cron, func(ctx context.Context) {
		s.runJob(ctx, job)
	})
}

// AddFunc registers fn under name on a cron expression.
func (s *Scheduler) AddFunc(name, spec string, fn func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q for %s: %w", spec, name, err)
	}
	for _, p := range s.pending {
		if p.name == name {
			return fmt.Errorf("%s is already scheduled", name)
		}
	}
	s.pending = append(s.pending, scheduled{name: name, spec: spec, run: fn})
	return nil
}

// Start schedules everything registered so far and returns. The scheduler
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}
	for _, p := range s.pending {
		run := p.run
		id, err := s.cron.AddFunc(p.spec, func() { run(ctx) })
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", p.name, err)
		}
		s.entries[p.name] = id
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "jobs", len(s.pending))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Debug("starting scheduled run", "job", job.Name)
	if _, err := s.pruner.Run(ctx, job); err != nil {
		s.logger.Error("scheduled run failed", "job", job.Name, "error", err)
	}
}

// Stop stops the scheduler and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled time for name, or nil when name is
// unknown or the scheduler has not started.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}
