package orchestrator

import (
	"context"
	"time"
)

// RetryPolicy is a bounded exponential-backoff schedule. An attempt sequence
// is the initial call plus up to MaxRetries retries, with delay
// BaseDelay * 2^n before the n-th retry.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy retries 3 times with 1s, 2s, 4s backoff.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, BaseDelay: time.Second}

// Attempts returns the total number of calls the policy allows.
func (p RetryPolicy) Attempts() int {
	return p.MaxRetries + 1
}

// Delay returns the backoff before retry n (0-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	return p.BaseDelay << retry
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
