// ABOUTME: Error types surfaced by the Quill client
// ABOUTME: Re-exports the dispatch error taxonomy so callers need a single import

package quill

import (
	"errors"

	qerrors "github.com/richochetclementine1315/Quill/core/errors"
)

// Error is the typed error every client method returns
type Error = qerrors.DispatchError

// ErrorKind classifies an Error
type ErrorKind = qerrors.Kind

// Error kinds
const (
	KindUnknownEndpoint    = qerrors.KindUnknownEndpoint
	KindValidationOrAuth   = qerrors.KindValidationOrAuth
	KindServiceUnavailable = qerrors.KindServiceUnavailable
	KindTimeout            = qerrors.KindTimeout
	KindNetwork            = qerrors.KindNetwork
	KindServerError        = qerrors.KindServerError
	KindInvalidRequest     = qerrors.KindInvalidRequest
	KindDecode             = qerrors.KindDecode
	KindCanceled           = qerrors.KindCanceled
)

// Classification helpers
var (
	IsUnknownEndpoint    = qerrors.IsUnknownEndpoint
	IsValidationOrAuth   = qerrors.IsValidationOrAuth
	IsServiceUnavailable = qerrors.IsServiceUnavailable
	IsTimeout            = qerrors.IsTimeout
	IsNetwork            = qerrors.IsNetwork
	IsCanceled           = qerrors.IsCanceled
	IsTransient          = qerrors.IsTransient
	KindOf               = qerrors.KindOf
	StatusOf             = qerrors.StatusOf
)

// ConfigError is returned by NewClient for invalid options
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "quill: invalid configuration: " + e.Message
}

func newConfigError(message string) *ConfigError {
	return &ConfigError{Message: message}
}

// ErrClientClosed is the cause of errors returned after Close
var ErrClientClosed = errors.New("quill: client is closed")
