package prune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a watched directory must stay quiet before
// its job runs.
const DefaultDebounce = 2 * time.Second

// Watcher runs a job whenever its snapshot directory changes. Bursts of
// events are collapsed into a single run.
type Watcher struct {
	pruner   *Pruner
	job      *Job
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for job.WatchPath. A zero debounce selects
// DefaultDebounce.
func NewWatcher(pruner *Pruner, job *Job, debounce time.Duration) (*Watcher, error) {
	if job.WatchPath == "" {
		return nil, fmt.Errorf("job %q has no watch path", job.Name)
	}
	info, err := os.Stat(job.WatchPath)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", job.Name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("job %q: %s is not a directory", job.Name, job.WatchPath)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		pruner:   pruner,
		job:      job,
		watcher:  fw,
		debounce: NewDebouncer(debounce),
		logger:   pruner.base.Slog().With("component", "prune.watcher", "job", job.Name),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer close(w.doneCh)

	if err := w.watcher.Add(w.job.WatchPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.job.WatchPath, err)
	}
	w.logger.Info("watching directory", "path", w.job.WatchPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("directory changed", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger(func() {
				if _, err := w.pruner.Run(ctx, w.job); err != nil {
					w.logger.Error("triggered run failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Stop stops the watcher, cancels any pending run and waits for a run
// already in progress to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	w.debounce.Stop()
	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return !strings.HasPrefix(filepath.Base(event.Name), ".")
}

// Debouncer runs the most recent callback once triggers stop arriving for
// the configured interval.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
	inflight sync.WaitGroup
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger restarts the quiet period with callback as the pending action.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		if cb == nil || d.stopped {
			d.mu.Unlock()
			return
		}
		d.inflight.Add(1)
		d.mu.Unlock()

		defer d.inflight.Done()
		cb()
	})
}

// Stop cancels any pending callback and waits for a running one to return.
// Later triggers are ignored. Stop must not be called from a callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
	d.mu.Unlock()

	d.inflight.Wait()
}
