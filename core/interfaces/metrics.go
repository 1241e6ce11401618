package interfaces

import "time"

// Metrics receives dispatcher and prober observations.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// ObserveAttempt records one request attempt and how it was classified.
	ObserveAttempt(endpoint, outcome string, duration time.Duration)

	// ObserveRetry records a scheduled retry and its delay.
	ObserveRetry(endpoint string, attempt int, delay time.Duration)

	// ObserveProbe records a liveness probe result.
	ObserveProbe(awake bool, duration time.Duration)

	// SetAwake records that the backend was seen awake outside a probe.
	SetAwake(awake bool)
}
