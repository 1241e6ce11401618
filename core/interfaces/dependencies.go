// ABOUTME: Dependencies container provides dependency injection for the dispatcher and prober
// ABOUTME: Defines the contract for collaborators required by the core request logic

package interfaces

import "go.opentelemetry.io/otel/trace"

// Dependencies holds all external dependencies required by the core request logic
type Dependencies struct {
	// HTTPClient performs single HTTP exchanges
	HTTPClient HTTPClient

	// Credentials attaches the session to every attempt
	Credentials Credentials

	// Cache keeps stale bodies for idempotent reads (optional)
	Cache Cache

	// Logger provides structured logging
	Logger Logger

	// Metrics receives attempt and probe observations (optional)
	Metrics Metrics

	// Tracer opens a span per dispatched call (optional)
	Tracer trace.Tracer
}
