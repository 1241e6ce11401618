package handlers

import (
	"strconv"

	"github.com/richochetclementine1315/Quill/quill"
)

// Headers describing how a backend result was obtained
const (
	StaleHeader    = "X-Quill-Stale"
	AttemptsHeader = "X-Quill-Attempts"
)

// ResultOutput is a successful backend payload along with how it was obtained
type ResultOutput[T any] struct {
	Attempts string `header:"X-Quill-Attempts" doc:"Attempts the gateway needed to reach the backend"`
	Stale    string `header:"X-Quill-Stale" doc:"true when the payload was served from the stale-read cache"`
	Body     T
}

func newResult[T any](info quill.ResultInfo, body T) *ResultOutput[T] {
	out := &ResultOutput[T]{Body: body}
	if info.Attempts > 0 {
		out.Attempts = strconv.Itoa(info.Attempts)
	}
	if info.Stale {
		out.Stale = "true"
	}
	return out
}

// callOptions collects the per-call options a browser request can ask for
func callOptions(idempotencyKey string, info *quill.ResultInfo) []quill.CallOption {
	opts := []quill.CallOption{quill.WithResultInfo(info)}
	if idempotencyKey != "" {
		opts = append(opts, quill.WithIdempotencyKey(idempotencyKey))
	}
	return opts
}
