package source

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/retain/pkg/retention"
)

var (
	// ErrUnparseable is returned when a name does not match the format.
	ErrUnparseable = errors.New("name does not match format")

	// ErrBeforeEpoch is returned for names that parse to an instant before
	// 1970-01-01T00:00:00Z.
	ErrBeforeEpoch = errors.New("timestamp before the Unix epoch")

	// ErrDuplicate marks an entry replaced by a later one with the same
	// timestamp.
	ErrDuplicate = errors.New("duplicate timestamp")
)

// Entry is a snapshot name and the instant it represents.
type Entry struct {
	Timestamp retention.Timestamp `json:"timestamp"`
	Name      string              `json:"name"`
}

// ParseWarning reports a name that was excluded from evaluation.
type ParseWarning struct {
	Name string
	Err  error
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("could not parse '%s': %v", w.Name, w.Err)
}

func (w ParseWarning) Unwrap() error {
	return w.Err
}

// Listing is the result of listing a source.
type Listing struct {
	Entries  []Entry
	Warnings []ParseWarning
}

func (l *Listing) add(p *TimeParser, name, payload string) {
	ts, err := p.Parse(name)
	if err != nil {
		l.Warnings = append(l.Warnings, ParseWarning{Name: payload, Err: err})
		return
	}
	l.Entries = append(l.Entries, Entry{Timestamp: ts, Name: payload})
}

// Source produces snapshot entries.
type Source interface {
	// Name identifies the source in logs and reports.
	Name() string

	// List returns every entry currently present. Unparseable names are
	// returned as warnings; the error is reserved for failures to read the
	// source at all.
	List(ctx context.Context) (*Listing, error)
}

// Collect builds the evaluator's input map. When two entries share a
// timestamp the later one wins and the replaced entry is reported.
func Collect(entries []Entry) (map[retention.Timestamp]string, []ParseWarning) {
	m := make(map[retention.Timestamp]string, len(entries))
	var dupes []ParseWarning
	for _, e := range entries {
		if prev, ok := m[e.Timestamp]; ok {
			dupes = append(dupes, ParseWarning{Name: prev, Err: ErrDuplicate})
		}
		m[e.Timestamp] = e.Name
	}
	return m, dupes
}
