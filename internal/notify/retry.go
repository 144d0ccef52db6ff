package notify

import (
	"math/rand/v2"
	"time"
)

// Default retry parameters, matching the historical deployment
// (5s base, 5 retries: 5s, 10s, 20s, 40s, 80s plus jitter).
const (
	DefaultRetryBase   = 5 * time.Second
	DefaultMaxAttempts = 5
)

// RetryDecision is the computed outcome of a failed delivery attempt.
// It is never persisted.
type RetryDecision struct {
	// Retry reports whether the job should be re-queued.
	Retry bool

	// Delay is how long to wait before re-queueing. Zero when Retry is false.
	Delay time.Duration
}

// RetryPolicy decides, from the attempt count alone, whether a failed job
// should be retried and after what delay. Attempt numbering starts at 1
// for the first retry.
type RetryPolicy interface {
	Decide(attempt int) RetryDecision
}

// BackoffPolicy is the standard policy: exponential backoff with full
// additive jitter. Delay = Base * 2^(attempt-1) + jitter, with jitter
// uniform in [0, Base * 2^(attempt-1)), so the delay for attempt n is
// always strictly below Base * 2^n and grows monotonically across
// attempts. The jitter source is injectable so tests can pin it to zero.
type BackoffPolicy struct {
	// Base is the delay before the first retry.
	Base time.Duration

	// MaxAttempts is the retry budget; Decide returns Retry=false for
	// any attempt beyond it.
	MaxAttempts int

	// Jitter returns a random duration in [0, max). Nil selects the
	// default non-crypto rand source.
	Jitter func(max time.Duration) time.Duration
}

// NewBackoffPolicy creates a BackoffPolicy with the default jitter source.
// Non-positive arguments fall back to the defaults.
func NewBackoffPolicy(base time.Duration, maxAttempts int) *BackoffPolicy {
	if base <= 0 {
		base = DefaultRetryBase
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &BackoffPolicy{
		Base:        base,
		MaxAttempts: maxAttempts,
		Jitter:      defaultJitter,
	}
}

// Decide implements RetryPolicy.
func (p *BackoffPolicy) Decide(attempt int) RetryDecision {
	if attempt > p.MaxAttempts {
		return RetryDecision{}
	}
	if attempt < 1 {
		attempt = 1
	}

	delay := p.Base << uint(attempt-1)

	jitter := p.Jitter
	if jitter == nil {
		jitter = defaultJitter
	}

	return RetryDecision{
		Retry: true,
		Delay: delay + jitter(delay),
	}
}

// defaultJitter returns a uniform duration in [0, max).
func defaultJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max))) //nolint:gosec // jitter intentionally uses non-crypto rand
}

var _ RetryPolicy = (*BackoffPolicy)(nil)
