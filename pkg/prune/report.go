package prune

import (
	"sort"
	"time"

	"mercator-hq/retain/pkg/journal"
	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/source"
)

// Report is the outcome of one run.
type Report struct {
	RunID    string        `json:"run_id"`
	Job      string        `json:"job"`
	Source   string        `json:"source"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`

	// Kept and Dropped are ordered oldest first.
	Kept    []source.Entry `json:"kept"`
	Dropped []source.Entry `json:"dropped"`

	Warnings []source.ParseWarning `json:"-"`

	// Schedule and Buckets are only filled for jobs with Explain set.
	Schedule retention.Schedule `json:"-"`
	Buckets  []retention.Bucket `json:"buckets,omitempty"`
}

// WarningNames returns the names of all warnings.
func (r *Report) WarningNames() []string {
	names := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		names[i] = w.Name
	}
	return names
}

// DroppedNames returns the names of dropped entries, oldest first.
func (r *Report) DroppedNames() []string {
	return entryNames(r.Dropped)
}

// KeptNames returns the names of kept entries, oldest first.
func (r *Report) KeptNames() []string {
	return entryNames(r.Kept)
}

// journalRun converts the report to a journal record.
func (r *Report) journalRun(status string, err error) *journal.Run {
	run := &journal.Run{
		ID:           r.RunID,
		Job:          r.Job,
		Source:       r.Source,
		StartedAt:    r.Started,
		Duration:     r.Duration,
		Status:       status,
		Kept:         len(r.Kept),
		Dropped:      len(r.Dropped),
		Warnings:     len(r.Warnings),
		DroppedNames: r.DroppedNames(),
	}
	if err != nil {
		run.Error = err.Error()
	}
	return run
}

func entryNames(entries []source.Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// sortedEntries flattens an evaluation partition, oldest first.
func sortedEntries(m map[retention.Timestamp]string) []source.Entry {
	out := make([]source.Entry, 0, len(m))
	for ts, name := range m {
		out = append(out, source.Entry{Timestamp: ts, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
