package retry

import (
	"context"
	"errors"
	"net"
	"net/http"

	qerrors "github.com/richochetclementine1315/Quill/core/errors"
)

// OutcomeKind is the classification of one attempt.
type OutcomeKind int

const (
	// Success means the backend answered with a non-error status.
	Success OutcomeKind = iota
	// Transient means the failure may clear up on its own (cold start, timeout, network).
	Transient
	// Permanent means repeating the same request cannot help.
	Permanent
)

// Outcome describes the classification of an attempt.
type Outcome struct {
	Kind OutcomeKind

	// ErrKind is the dispatch error kind for failures, empty on success.
	ErrKind qerrors.Kind

	// Status is the HTTP status, 0 when no response was received.
	Status int

	// Err is the transport error, if any.
	Err error
}

// Label returns a low-cardinality name for logs and metrics.
func (o Outcome) Label() string {
	if o.Kind == Success {
		return "success"
	}
	return string(o.ErrKind)
}

// Classify turns a status code or transport error into an Outcome.
// attemptTimedOut is set by the caller when its per-attempt deadline fired.
func Classify(status int, err error, attemptTimedOut bool) Outcome {
	if err != nil {
		if attemptTimedOut || isTimeout(err) {
			return Outcome{Kind: Transient, ErrKind: qerrors.KindTimeout, Err: err}
		}
		return Outcome{Kind: Transient, ErrKind: qerrors.KindNetwork, Err: err}
	}

	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return Outcome{Kind: Transient, ErrKind: qerrors.KindServiceUnavailable, Status: status}
	}

	switch {
	case status >= 500:
		return Outcome{Kind: Permanent, ErrKind: qerrors.KindServerError, Status: status}
	case status >= 400:
		return Outcome{Kind: Permanent, ErrKind: qerrors.KindValidationOrAuth, Status: status}
	default:
		return Outcome{Kind: Success, Status: status}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
