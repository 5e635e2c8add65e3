package tracing

import (
	"strings"
	"testing"
)

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantDesc string
		wantErr  bool
	}{
		{"always", SamplerAlways, 0, "AlwaysOnSampler", false},
		{"parent based", SamplerParentBased, 0, "AlwaysOnSampler", false},
		{"never", SamplerNever, 0, "AlwaysOffSampler", false},
		{"ratio", SamplerRatio, 0.5, "TraceIDRatioBased{0.5}", false},
		{"ratio too large", SamplerRatio, 1.1, "", true},
		{"ratio negative", SamplerRatio, -0.1, "", true},
		{"unknown", "sometimes", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			desc := sampler.Description()
			if !strings.HasPrefix(desc, "ParentBased{root:"+tt.wantDesc) {
				t.Errorf("Description() = %q, want ParentBased wrapping %s", desc, tt.wantDesc)
			}
		})
	}
}
