package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net/url"

	qerrors "github.com/richochetclementine1315/Quill/core/errors"
)

// File is the payload of a multipart upload
type File struct {
	// Field is the form field name; "image" when empty
	Field string

	// Name is the file name reported to the backend
	Name string

	// ContentType defaults to application/octet-stream
	ContentType string

	Reader io.Reader
}

// Params carries everything a call needs besides the endpoint name
type Params struct {
	// Path fills {name} placeholders of the path template
	Path map[string]string

	// Query is appended to the URL for any encoding
	Query url.Values

	// Body is JSON encoded for json endpoints
	Body interface{}

	// File is required by multipart endpoints
	File *File

	// IdempotencyKey lets the backend deduplicate, which makes the call safe to retry
	IdempotencyKey string
}

// Result is a successful (or stale) response
type Result struct {
	Endpoint string
	Status   int
	Body     []byte
	Attempts int

	// Stale is set when the body came from the cache because the backend stayed unavailable
	Stale bool
}

// Decode unmarshals the JSON body into v
func (r *Result) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return qerrors.New(qerrors.KindDecode, r.Endpoint, "response body is not valid JSON").
			WithStatus(r.Status).
			WithCause(err)
	}
	return nil
}

type requestIDKey struct{}

// WithRequestID tags outgoing requests made with ctx with the given id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
