// ABOUTME: Prometheus implementation of the dispatcher and prober metrics
// ABOUTME: Registers attempt, retry and probe collectors on a caller supplied registry

package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quill"

// Metrics implements interfaces.Metrics with Prometheus collectors
type Metrics struct {
	attempts      *prometheus.CounterVec
	attemptTime   *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	retryDelay    *prometheus.HistogramVec
	probes        *prometheus.CounterVec
	probeDuration prometheus.Histogram
	awake         prometheus.Gauge
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_attempts_total",
			Help:      "Request attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		attemptTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_attempt_duration_seconds",
			Help:      "Duration of single request attempts.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		}, []string{"endpoint"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_retries_total",
			Help:      "Scheduled retries by endpoint and attempt number.",
		}, []string{"endpoint", "attempt"}),
		retryDelay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_retry_delay_seconds",
			Help:      "Backoff delay before a retry.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 10},
		}, []string{"endpoint"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Liveness probes by result.",
		}, []string{"result"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Time until the liveness probe resolved.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 45, 60, 75},
		}),
		awake: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_awake",
			Help:      "1 when the backend last answered a probe or a request.",
		}),
	}

	collectors := []prometheus.Collector{
		m.attempts, m.attemptTime, m.retries, m.retryDelay, m.probes, m.probeDuration, m.awake,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveAttempt records one attempt
func (m *Metrics) ObserveAttempt(endpoint, outcome string, d time.Duration) {
	m.attempts.WithLabelValues(endpoint, outcome).Inc()
	m.attemptTime.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveRetry records a scheduled retry
func (m *Metrics) ObserveRetry(endpoint string, attempt int, delay time.Duration) {
	m.retries.WithLabelValues(endpoint, strconv.Itoa(attempt)).Inc()
	m.retryDelay.WithLabelValues(endpoint).Observe(delay.Seconds())
}

// ObserveProbe records a probe result
func (m *Metrics) ObserveProbe(awake bool, d time.Duration) {
	result := "asleep"
	if awake {
		result = "awake"
	}
	m.SetAwake(awake)
	m.probes.WithLabelValues(result).Inc()
	m.probeDuration.Observe(d.Seconds())
}

// SetAwake updates the backend_awake gauge
func (m *Metrics) SetAwake(awake bool) {
	if awake {
		m.awake.Set(1)
		return
	}
	m.awake.Set(0)
}
