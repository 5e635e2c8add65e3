package main

import (
	"strings"

	"mercator-hq/retain/pkg/retention"
)

// policyFlag collects repeated -p values. Each value is an "interval:count"
// pair; normalizePolicyArgs rewrites the two-argument form into it.
type policyFlag struct {
	values []string
}

func (f *policyFlag) String() string {
	return strings.Join(f.values, " ")
}

func (f *policyFlag) Set(v string) error {
	f.values = append(f.values, v)
	return nil
}

func (f *policyFlag) Type() string {
	return "interval count"
}

// schedule parses the collected values into a retention schedule.
func (f *policyFlag) schedule() (retention.Schedule, error) {
	args := make([]string, 0, 2*len(f.values))
	for _, v := range f.values {
		interval, count, ok := strings.Cut(v, ":")
		if !ok {
			interval, count, ok = strings.Cut(v, ",")
		}
		if !ok {
			// Surfaces as a pair-count error.
			args = append(args, v)
			continue
		}
		args = append(args, interval, count)
	}
	return retention.ParseSchedule(args)
}

// normalizePolicyArgs rewrites "-p <interval> <count>" into "-p=<interval>:<count>"
// so the pair survives flag parsing as a single value. Anything after "--"
// is left alone.
func normalizePolicyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return append(out, args[i:]...)
		}
		if (a == "-p" || a == "--policy") && i+2 < len(args) && isValue(args[i+1]) && isValue(args[i+2]) &&
			!strings.ContainsAny(args[i+1], ":,") {
			out = append(out, a+"="+args[i+1]+":"+args[i+2])
			i += 2
			continue
		}
		out = append(out, a)
	}
	return out
}

func isValue(s string) bool {
	return s != "" && !strings.HasPrefix(s, "-")
}
