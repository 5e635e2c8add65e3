package retention

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroInterval is returned for a policy whose interval is zero.
	ErrZeroInterval = errors.New("interval must be greater than zero")

	// ErrInvalidInterval is returned when an interval string cannot be parsed.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrInvalidCount is returned when a count string cannot be parsed.
	ErrInvalidCount = errors.New("invalid count")

	// ErrNoPolicies is returned when a schedule contains no policies.
	ErrNoPolicies = errors.New("at least one retention policy is required")
)

// PolicyError reports which policy of a schedule is invalid.
type PolicyError struct {
	Index  int
	Policy Policy
	Err    error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy %d (%s): %v", e.Index, e.Policy, e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}
