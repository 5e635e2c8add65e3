package main

import (
	"errors"
	"reflect"
	"testing"

	"mercator-hq/retain/pkg/retention"
)

func TestNormalizePolicyArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "pairs",
			args: []string{"prune", "-p", "1d", "7", "--policy", "1w", "8", "-v"},
			want: []string{"prune", "-p=1d:7", "--policy=1w:8", "-v"},
		},
		{
			name: "already joined",
			args: []string{"prune", "-p", "1d:7"},
			want: []string{"prune", "-p", "1d:7"},
		},
		{
			name: "missing count",
			args: []string{"prune", "-p", "1d", "-v"},
			want: []string{"prune", "-p", "1d", "-v"},
		},
		{
			name: "after terminator",
			args: []string{"prune", "--", "-p", "1d", "7"},
			want: []string{"prune", "--", "-p", "1d", "7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePolicyArgs(tt.args); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizePolicyArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicyFlag_Schedule(t *testing.T) {
	var f policyFlag
	for _, v := range []string{"1d:7", "604800,4"} {
		if err := f.Set(v); err != nil {
			t.Fatalf("Set(%q) error = %v", v, err)
		}
	}
	got, err := f.schedule()
	if err != nil {
		t.Fatalf("schedule() error = %v", err)
	}
	want := retention.Schedule{{Interval: 86400, Count: 7}, {Interval: 604800, Count: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("schedule() = %v, want %v", got, want)
	}

	var empty policyFlag
	if _, err := empty.schedule(); !errors.Is(err, retention.ErrNoPolicies) {
		t.Errorf("schedule() error = %v, want ErrNoPolicies", err)
	}

	var odd policyFlag
	_ = odd.Set("1d")
	if _, err := odd.schedule(); err == nil {
		t.Error("schedule() accepted an interval without a count")
	}
}
