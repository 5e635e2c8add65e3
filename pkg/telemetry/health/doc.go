// Package health serves liveness and readiness probes for long-running
// retain processes.
//
// Readiness aggregates named checks, such as whether the journal answers
// queries or the scheduler is running. Checks run concurrently, each under
// its own timeout. A failing check marks the process degraded and the
// readiness endpoint answers 503.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("scheduler", func(ctx context.Context) error {
//		if !scheduler.IsRunning() {
//			return errors.New("scheduler stopped")
//		}
//		return nil
//	})
//	health.Mount(mux, checker, version, commit, buildDate)
package health
