package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	qerrors "github.com/richochetclementine1315/Quill/core/errors"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		err      error
		timedOut bool
		kind     OutcomeKind
		errKind  qerrors.Kind
	}{
		{name: "200", status: 200, kind: Success},
		{name: "201", status: 201, kind: Success},
		{name: "304", status: 304, kind: Success},
		{name: "400", status: 400, kind: Permanent, errKind: qerrors.KindValidationOrAuth},
		{name: "401", status: 401, kind: Permanent, errKind: qerrors.KindValidationOrAuth},
		{name: "404", status: 404, kind: Permanent, errKind: qerrors.KindValidationOrAuth},
		{name: "429", status: 429, kind: Permanent, errKind: qerrors.KindValidationOrAuth},
		{name: "500", status: 500, kind: Permanent, errKind: qerrors.KindServerError},
		{name: "501", status: 501, kind: Permanent, errKind: qerrors.KindServerError},
		{name: "502", status: 502, kind: Transient, errKind: qerrors.KindServiceUnavailable},
		{name: "503", status: 503, kind: Transient, errKind: qerrors.KindServiceUnavailable},
		{name: "504", status: 504, kind: Transient, errKind: qerrors.KindServiceUnavailable},
		{name: "attempt deadline", err: errors.New("request aborted"), timedOut: true, kind: Transient, errKind: qerrors.KindTimeout},
		{name: "deadline exceeded", err: fmt.Errorf("do: %w", context.DeadlineExceeded), kind: Transient, errKind: qerrors.KindTimeout},
		{name: "net timeout", err: timeoutErr{}, kind: Transient, errKind: qerrors.KindTimeout},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), kind: Transient, errKind: qerrors.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.status, tt.err, tt.timedOut)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.errKind, got.ErrKind)
		})
	}
}

func TestOutcome_Label(t *testing.T) {
	assert.Equal(t, "success", Classify(200, nil, false).Label())
	assert.Equal(t, "service_unavailable", Classify(503, nil, false).Label())
	assert.Equal(t, "timeout", Classify(0, context.DeadlineExceeded, false).Label())
}

func TestPolicy_DelayIsExactExponential(t *testing.T) {
	p := DefaultPolicy()

	want := map[int]time.Duration{
		1: 1000 * time.Millisecond,
		2: 2000 * time.Millisecond,
		3: 4000 * time.Millisecond,
		4: 8000 * time.Millisecond,
		5: 10000 * time.Millisecond,
		6: 10000 * time.Millisecond,
	}
	for attempt, expected := range want {
		assert.Equal(t, expected, p.Delay(attempt), "attempt %d", attempt)
	}

	// min(base * 2^(N-1), cap) for a non-default base
	p = Policy{MaxRetries: 3, BaseDelay: 150 * time.Millisecond, MaxDelay: 500 * time.Millisecond}
	for n := 1; n <= 8; n++ {
		expected := p.BaseDelay * time.Duration(1<<uint(n-1))
		if expected > p.MaxDelay {
			expected = p.MaxDelay
		}
		assert.Equal(t, expected, p.Delay(n), "attempt %d", n)
	}
}

func TestPolicy_DelayIsDeterministic(t *testing.T) {
	p := DefaultPolicy()
	for i := 0; i < 10; i++ {
		assert.Equal(t, p.Delay(3), p.Delay(3))
	}
	assert.Equal(t, p.Delay(1), p.Delay(0), "attempt below 1 is treated as 1")
	assert.Equal(t, p.MaxDelay, p.Delay(1_000_000))
}

func TestPolicy_JitterNeverExceedsCap(t *testing.T) {
	p := Policy{MaxRetries: 3, BaseDelay: 800 * time.Millisecond, MaxDelay: time.Second, Jitter: 0.5}
	for i := 0; i < 200; i++ {
		for attempt := 1; attempt <= 4; attempt++ {
			d := p.Delay(attempt)
			assert.LessOrEqual(t, d, p.MaxDelay)
			assert.GreaterOrEqual(t, d, time.Duration(0))
		}
	}
}

func TestPolicy_Decide(t *testing.T) {
	p := DefaultPolicy()
	unavailable := Classify(503, nil, false)
	timeout := Classify(0, context.DeadlineExceeded, false)

	t.Run("transient idempotent within budget", func(t *testing.T) {
		for attempt := 1; attempt <= p.MaxRetries; attempt++ {
			d := p.Decide(unavailable, attempt, true)
			assert.True(t, d.Retry, "attempt %d", attempt)
			assert.Equal(t, p.Delay(attempt), d.Delay)
		}
	})

	t.Run("budget exhausted", func(t *testing.T) {
		d := p.Decide(unavailable, p.MaxRetries+1, true)
		assert.False(t, d.Retry)
		assert.Equal(t, "retry budget exhausted", d.Reason)
	})

	t.Run("non idempotent never retried", func(t *testing.T) {
		for attempt := 1; attempt <= p.MaxRetries+1; attempt++ {
			assert.False(t, p.Decide(timeout, attempt, false).Retry)
			assert.False(t, p.Decide(unavailable, attempt, false).Retry)
		}
	})

	t.Run("permanent never retried", func(t *testing.T) {
		for _, status := range []int{400, 401, 404, 500} {
			for attempt := 1; attempt <= p.MaxRetries; attempt++ {
				assert.False(t, p.Decide(Classify(status, nil, false), attempt, true).Retry)
			}
		}
	})

	t.Run("success not retried", func(t *testing.T) {
		assert.False(t, p.Decide(Classify(200, nil, false), 1, true).Retry)
	})
}
