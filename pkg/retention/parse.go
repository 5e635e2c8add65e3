package retention

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerDay  = 86400
	secondsPerWeek = 7 * secondsPerDay
)

// ParseInterval parses a bucket width in seconds. It accepts a plain number
// of seconds ("86400"), a day or week count ("3d", "2w") or any Go duration
// of whole seconds ("36h", "90m"). Durations with a sub-second remainder,
// such as "1500ms", are rejected.
func ParseInterval(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidInterval)
	}

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return checkInterval(n)
	}

	switch unit := s[len(s)-1]; unit {
	case 'd', 'w':
		n, err := strconv.ParseUint(s[:len(s)-1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w %q", ErrInvalidInterval, s)
		}
		scale := uint64(secondsPerDay)
		if unit == 'w' {
			scale = secondsPerWeek
		}
		v, ok := mul(n, scale)
		if !ok {
			return 0, fmt.Errorf("%w %q: overflows", ErrInvalidInterval, s)
		}
		return checkInterval(v)
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidInterval, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w %q: negative", ErrInvalidInterval, s)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("%w %q: not a whole number of seconds", ErrInvalidInterval, s)
	}
	return checkInterval(uint64(d / time.Second))
}

func checkInterval(n uint64) (uint64, error) {
	if n == 0 {
		return 0, ErrZeroInterval
	}
	return n, nil
}

// ParseCount parses a non-negative bucket count.
func ParseCount(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidCount, s)
	}
	return uint32(n), nil
}

// ParsePolicy parses an interval and count pair.
func ParsePolicy(interval, count string) (Policy, error) {
	iv, err := ParseInterval(interval)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid interval '%s': %w", interval, err)
	}
	c, err := ParseCount(count)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid count '%s': %w", count, err)
	}
	return Policy{Interval: iv, Count: c}, nil
}

// ParseSchedule parses a flat list of interval/count pairs as produced by
// repeated "-p <interval> <count>" flags.
func ParseSchedule(args []string) (Schedule, error) {
	if len(args) == 0 {
		return nil, ErrNoPolicies
	}
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("policy arguments must come in interval/count pairs, got %d values", len(args))
	}

	s := make(Schedule, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		p, err := ParsePolicy(args[i], args[i+1])
		if err != nil {
			return nil, err
		}
		s = append(s, p)
	}
	return s, nil
}

// formatInterval renders an interval using the largest whole unit.
func formatInterval(seconds uint64) string {
	switch {
	case seconds == 0:
		return "0s"
	case seconds%secondsPerWeek == 0:
		return strconv.FormatUint(seconds/secondsPerWeek, 10) + "w"
	case seconds%secondsPerDay == 0:
		return strconv.FormatUint(seconds/secondsPerDay, 10) + "d"
	case seconds%3600 == 0:
		return strconv.FormatUint(seconds/3600, 10) + "h"
	default:
		return strconv.FormatUint(seconds, 10) + "s"
	}
}
