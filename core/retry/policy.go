// ABOUTME: Retry policy decides whether a failed attempt is repeated and after what delay
// ABOUTME: Pure and deterministic; the exponential schedule comes from cenkalti/backoff

package retry

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxRetries is the number of retries allowed after the first attempt
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the delay before the first retry
	DefaultBaseDelay = 1000 * time.Millisecond
	// DefaultMaxDelay caps every delay
	DefaultMaxDelay = 10000 * time.Millisecond

	// the schedule saturates long before this many doublings
	maxScheduleSteps = 64
)

// Policy holds the retry budget and the backoff schedule
type Policy struct {
	// MaxRetries bounds retries beyond the first attempt
	MaxRetries int

	// BaseDelay is the delay after attempt 1
	BaseDelay time.Duration

	// MaxDelay caps the delay for any attempt
	MaxDelay time.Duration

	// Jitter is a randomization factor in [0,1); 0 keeps the schedule exact
	Jitter float64
}

// Decision is the result of consulting the policy
type Decision struct {
	Retry  bool
	Delay  time.Duration
	Reason string
}

// DefaultPolicy returns 3 retries, 1s base, 10s cap, no jitter
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// Decide reports whether the attempt numbered attempt (starting at 1) should be
// followed by another one. Non-idempotent operations are never retried, since a
// timeout says nothing about whether the backend already applied the effect.
func (p Policy) Decide(outcome Outcome, attempt int, idempotent bool) Decision {
	switch {
	case outcome.Kind == Success:
		return Decision{Reason: "succeeded"}
	case outcome.Kind == Permanent:
		return Decision{Reason: "permanent failure"}
	case !idempotent:
		return Decision{Reason: "operation is not idempotent"}
	case attempt > p.MaxRetries:
		return Decision{Reason: "retry budget exhausted"}
	}
	return Decision{Retry: true, Delay: p.Delay(attempt), Reason: "transient failure"}
}

// Delay returns min(BaseDelay * 2^(attempt-1), MaxDelay), randomized by Jitter
// when set but never above MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > maxScheduleSteps {
		attempt = maxScheduleSteps
	}

	schedule := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: p.Jitter,
		Multiplier:          2,
		MaxInterval:         p.MaxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	schedule.Reset()

	var delay time.Duration
	for i := 0; i < attempt; i++ {
		delay = schedule.NextBackOff()
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}
