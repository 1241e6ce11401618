package quill

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockMetrics is a testify mock of interfaces.Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) ObserveAttempt(endpoint, outcome string, duration time.Duration) {
	m.Called(endpoint, outcome, duration)
}

func (m *MockMetrics) ObserveRetry(endpoint string, attempt int, delay time.Duration) {
	m.Called(endpoint, attempt, delay)
}

func (m *MockMetrics) ObserveProbe(awake bool, duration time.Duration) {
	m.Called(awake, duration)
}

func (m *MockMetrics) SetAwake(awake bool) {
	m.Called(awake)
}
