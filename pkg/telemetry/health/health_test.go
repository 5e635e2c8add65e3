package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	if got := New(0).checkTimeout; got != 5*time.Second {
		t.Errorf("default timeout = %v, want 5s", got)
	}
	if got := New(time.Second).checkTimeout; got != time.Second {
		t.Errorf("timeout = %v, want 1s", got)
	}
}

func TestChecker_ListChecks(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("scheduler", func(context.Context) error { return nil })
	checker.RegisterCheck("journal", func(context.Context) error { return nil })
	checker.RegisterCheck("journal", func(context.Context) error { return nil })

	if got, want := checker.ListChecks(), []string{"journal", "scheduler"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListChecks() = %v, want %v", got, want)
	}
}

func TestChecker_CheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks",
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"journal":   func(context.Context) error { return nil },
				"scheduler": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"journal":   func(context.Context) error { return errors.New("database is locked") },
				"scheduler": func(context.Context) error { return nil },
			},
			wantStatus: StatusDegraded,
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"journal": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(10 * time.Millisecond)
					return nil
				},
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(50 * time.Millisecond)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_FailureMessage(t *testing.T) {
	checker := New(50 * time.Millisecond)
	checker.RegisterCheck("journal", func(context.Context) error { return errors.New("database is locked") })
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	if got := status.Checks["journal"]; got.Status != StatusUnhealthy || got.Message != "database is locked" {
		t.Errorf("journal = %+v", got)
	}
	if got := status.Checks["slow"]; got.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow = %+v, want a timeout", got)
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	healthy := true
	checker.RegisterCheck("scheduler", func(context.Context) error {
		if !healthy {
			return errors.New("scheduler stopped")
		}
		return nil
	})

	mux := http.NewServeMux()
	Mount(mux, checker, "1.2.3", "abc123", "2026-01-01")

	get := func(path, method string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	if rec := get("/healthz", http.MethodGet); rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
	if rec := get("/readyz", http.MethodGet); rec.Code != http.StatusOK {
		t.Errorf("GET /readyz = %d, want 200", rec.Code)
	}

	healthy = false
	rec := get("/readyz", http.MethodGet)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz = %d, want 503", rec.Code)
	}
	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("readiness body is not JSON: %v", err)
	}
	if status.Checks["scheduler"].Message != "scheduler stopped" {
		t.Errorf("scheduler check = %+v", status.Checks["scheduler"])
	}

	rec = get("/version", http.MethodGet)
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("version body is not JSON: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("version = %+v", info)
	}

	if rec := get("/healthz", http.MethodPost); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /healthz = %d, want 405", rec.Code)
	}
	if rec := get("/healthz", http.MethodHead); rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD /healthz = %d with %d bytes", rec.Code, rec.Body.Len())
	}
}
