package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Check is one independent probe run by RunChecks.
type Check struct {
	Name string
	// Run performs the probe and returns a short success detail.
	Run func(ctx context.Context) (string, error)
}

// CheckResult is reported once per executed check.
type CheckResult struct {
	Name     string
	Detail   string
	Err      error
	Duration time.Duration
}

// OK reports whether the check passed.
func (r CheckResult) OK() bool { return r.Err == nil }

// RunChecks runs checks in order, each under its own timeout (0 means no
// timeout beyond ctx). Connectivity and validation failures are reported
// and the remaining checks still run; any other error (cancellation, lost
// input) stops the run. The returned error joins every failure.
func RunChecks(ctx context.Context, checks []Check, timeout time.Duration, report func(CheckResult)) error {
	var failures []error
	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		res := runCheck(ctx, c, timeout)
		if report != nil {
			report(res)
		}
		if res.OK() {
			continue
		}
		failures = append(failures, fmt.Errorf("%s: %w", c.Name, res.Err))
		if !IsConnectivity(res.Err) && !IsValidation(res.Err) {
			break
		}
	}
	return errors.Join(failures...)
}

func runCheck(ctx context.Context, c Check, timeout time.Duration) CheckResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	detail, err := c.Run(ctx)
	return CheckResult{Name: c.Name, Detail: detail, Err: err, Duration: time.Since(start)}
}
