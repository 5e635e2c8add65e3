package retention

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp is a number of seconds since the Unix epoch.
type Timestamp uint64

// Time converts the timestamp to a UTC time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Policy keeps up to Count entries, one per Interval-sized bucket.
type Policy struct {
	// Interval is the bucket width in seconds. Must be greater than zero.
	Interval uint64 `json:"interval" yaml:"interval"`

	// Count is the number of buckets to fill. Zero is legal and keeps
	// nothing beyond what other policies already retain.
	Count uint32 `json:"count" yaml:"count"`
}

// Validate reports whether the policy can be evaluated.
func (p Policy) Validate() error {
	if p.Interval == 0 {
		return ErrZeroInterval
	}
	return nil
}

func (p Policy) String() string {
	return fmt.Sprintf("%s x%d", formatInterval(p.Interval), p.Count)
}

// Schedule is an ordered list of policies.
type Schedule []Policy

// Validate checks every policy and requires at least one.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return ErrNoPolicies
	}
	for i, p := range s {
		if err := p.Validate(); err != nil {
			return &PolicyError{Index: i, Policy: p, Err: err}
		}
	}
	return nil
}

// MaxKept is the upper bound on the size of the keep set: the anchor plus
// one entry per bucket.
func (s Schedule) MaxKept() uint64 {
	total := uint64(1)
	for _, p := range s {
		total += uint64(p.Count)
	}
	return total
}

func (s Schedule) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// Alignment selects how bucket boundaries are placed.
type Alignment int

const (
	// AlignAnchor measures buckets back from the newest entry's timestamp.
	AlignAnchor Alignment = iota

	// AlignInterval rounds the anchor up to the next multiple of each
	// policy's interval before measuring buckets.
	AlignInterval
)

func (a Alignment) String() string {
	switch a {
	case AlignAnchor:
		return "anchor"
	case AlignInterval:
		return "interval"
	default:
		return fmt.Sprintf("alignment(%d)", int(a))
	}
}

// ParseAlignment parses "anchor" or "interval". The empty string is
// AlignAnchor.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "anchor":
		return AlignAnchor, nil
	case "interval":
		return AlignInterval, nil
	default:
		return AlignAnchor, fmt.Errorf("unknown alignment %q (expected anchor or interval)", s)
	}
}

// Window is a half-open time range (Lower, Upper]. When FromEpoch is set the
// lower bound has been clamped and the window starts at timestamp zero
// inclusive.
type Window struct {
	Lower     Timestamp `json:"lower"`
	Upper     Timestamp `json:"upper"`
	FromEpoch bool      `json:"from_epoch,omitempty"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t Timestamp) bool {
	if t > w.Upper {
		return false
	}
	return w.FromEpoch || t > w.Lower
}

func (w Window) String() string {
	if w.FromEpoch {
		return fmt.Sprintf("[0, %d]", w.Upper)
	}
	return fmt.Sprintf("(%d, %d]", w.Lower, w.Upper)
}

// Outcome describes what happened to one bucket.
type Outcome int

const (
	// BucketFilled means a remaining entry was promoted into the keep set.
	BucketFilled Outcome = iota
	// BucketSatisfied means an already kept entry covered the bucket.
	BucketSatisfied
	// BucketEmpty means no entry fell inside the bucket.
	BucketEmpty
)

func (o Outcome) String() string {
	switch o {
	case BucketFilled:
		return "filled"
	case BucketSatisfied:
		return "satisfied"
	case BucketEmpty:
		return "empty"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Bucket records the evaluation of a single bucket. Timestamp is only
// meaningful when Outcome is not BucketEmpty.
type Bucket struct {
	Policy    int       `json:"policy"`
	Index     uint64    `json:"index"`
	Window    Window    `json:"window"`
	Outcome   Outcome   `json:"outcome"`
	Timestamp Timestamp `json:"timestamp,omitempty"`
}

// Result is the partition produced by Evaluate.
type Result[T any] struct {
	Keep map[Timestamp]T
	Drop map[Timestamp]T

	// Buckets is only populated when WithTrace is passed.
	Buckets []Bucket
}

// Option configures an evaluation.
type Option func(*options)

type options struct {
	alignment Alignment
	trace     bool
}

// WithAlignment selects the bucket alignment.
func WithAlignment(a Alignment) Option {
	return func(o *options) {
		o.alignment = a
	}
}

// WithTrace records every bucket decision in Result.Buckets.
func WithTrace() Option {
	return func(o *options) {
		o.trace = true
	}
}
