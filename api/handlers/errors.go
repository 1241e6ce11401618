// ABOUTME: Error handling utilities for gateway handlers
// ABOUTME: Converts dispatch errors to the Huma HTTP errors the browser receives

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	qerrors "github.com/richochetclementine1315/Quill/core/errors"
)

// RetryAfter is advertised when the backend is temporarily unavailable
const RetryAfter = 30

// wakingMessage replaces transport details the browser cannot act on
const wakingMessage = "The server is waking up or unavailable. Please try again shortly."

// toHumaError converts dispatch errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	var dispatchErr *qerrors.DispatchError
	if !errors.As(err, &dispatchErr) {
		return huma.Error500InternalServerError("Internal server error", err)
	}

	switch dispatchErr.Kind {
	case qerrors.KindValidationOrAuth:
		// the backend message is shown to the user verbatim
		status := dispatchErr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadRequest
		}
		return huma.NewError(status, dispatchErr.Message)

	case qerrors.KindInvalidRequest:
		return huma.Error400BadRequest(dispatchErr.Message)

	case qerrors.KindServiceUnavailable, qerrors.KindTimeout, qerrors.KindNetwork:
		return huma.ErrorWithHeaders(
			huma.Error503ServiceUnavailable(wakingMessage),
			http.Header{"Retry-After": {strconv.Itoa(RetryAfter)}},
		)

	case qerrors.KindServerError, qerrors.KindDecode:
		message := dispatchErr.Message
		if message == "" {
			message = http.StatusText(http.StatusBadGateway)
		}
		return huma.Error502BadGateway(message)

	case qerrors.KindCanceled:
		return huma.NewError(http.StatusRequestTimeout, "Request canceled")
	}

	return huma.Error500InternalServerError("Internal server error", err)
}
