// ABOUTME: Typed dispatch errors returned to every caller of the API client
// ABOUTME: Carries kind, HTTP status, message and attempt count so the UI can decide what to show

package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal dispatch failure.
type Kind string

const (
	// KindUnknownEndpoint means the logical operation is not in the catalog.
	KindUnknownEndpoint Kind = "unknown_endpoint"

	// KindValidationOrAuth covers 4xx answers; the backend message is kept verbatim.
	KindValidationOrAuth Kind = "validation_or_auth"

	// KindServiceUnavailable covers 502, 503 and 504.
	KindServiceUnavailable Kind = "service_unavailable"

	// KindTimeout means the per-attempt deadline fired before a response arrived.
	KindTimeout Kind = "timeout"

	// KindNetwork covers connection-level failures.
	KindNetwork Kind = "network"

	// KindServerError covers the remaining 5xx statuses.
	KindServerError Kind = "server_error"

	// KindInvalidRequest means the request could not be built from the parameters.
	KindInvalidRequest Kind = "invalid_request"

	// KindDecode means a successful response body could not be decoded.
	KindDecode Kind = "decode"

	// KindCanceled means the caller abandoned the call.
	KindCanceled Kind = "canceled"
)

// Transient reports whether failures of this kind are worth retrying.
func (k Kind) Transient() bool {
	switch k {
	case KindServiceUnavailable, KindTimeout, KindNetwork:
		return true
	}
	return false
}

// DispatchError is the only error type the client hands to its callers
type DispatchError struct {
	Kind     Kind
	Status   int
	Message  string
	Endpoint string
	Attempts int
	Cause    error
}

// Error implements the error interface
func (e *DispatchError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Endpoint, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *DispatchError) Unwrap() error {
	return e.Cause
}

// New creates a dispatch error of the given kind for an endpoint
func New(kind Kind, endpoint, message string) *DispatchError {
	return &DispatchError{
		Kind:     kind,
		Endpoint: endpoint,
		Message:  message,
	}
}

// WithStatus records the HTTP status that produced the error
func (e *DispatchError) WithStatus(status int) *DispatchError {
	e.Status = status
	return e
}

// WithCause records the underlying error
func (e *DispatchError) WithCause(cause error) *DispatchError {
	e.Cause = cause
	return e
}

// WithAttempts records how many attempts were made
func (e *DispatchError) WithAttempts(attempts int) *DispatchError {
	e.Attempts = attempts
	return e
}

// KindOf returns the kind of a dispatch error, or "" for any other error.
func KindOf(err error) Kind {
	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) {
		return dispatchErr.Kind
	}
	return ""
}

// StatusOf returns the HTTP status carried by a dispatch error, or 0.
func StatusOf(err error) int {
	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) {
		return dispatchErr.Status
	}
	return 0
}

// IsUnknownEndpoint checks if an error is an unknown endpoint error
func IsUnknownEndpoint(err error) bool {
	return KindOf(err) == KindUnknownEndpoint
}

// IsValidationOrAuth checks if an error is a 4xx error
func IsValidationOrAuth(err error) bool {
	return KindOf(err) == KindValidationOrAuth
}

// IsServiceUnavailable checks if an error is a 502/503/504 error
func IsServiceUnavailable(err error) bool {
	return KindOf(err) == KindServiceUnavailable
}

// IsTimeout checks if an error is a local timeout
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsNetwork checks if an error is a connection-level failure
func IsNetwork(err error) bool {
	return KindOf(err) == KindNetwork
}

// IsCanceled checks if the caller abandoned the call
func IsCanceled(err error) bool {
	return KindOf(err) == KindCanceled
}

// IsTransient checks if an error belongs to a retryable kind
func IsTransient(err error) bool {
	return KindOf(err).Transient()
}
