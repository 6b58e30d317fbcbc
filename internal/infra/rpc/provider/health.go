package provider

import (
	"sync"
	"time"

	"github.com/vietddude/sfclient/internal/metrics"
)

const (
	healthLatencyWindow   = 100
	slowResponseThreshold = 3 * time.Second
	degradedErrorRate     = 0.3
	minDegradedSamples    = 10
)

// HealthStatus summarizes recent dispatch outcomes against the endpoint.
// A JSON-RPC error counts as a success here: the cluster answered.
type HealthStatus struct {
	Requests       int
	Failures       int
	ErrorRate      float64
	AverageLatency time.Duration
	LastSuccessAt  time.Time
	LastFailureAt  time.Time
	LastFailure    string // outcome label, never the error text
	Degraded       bool
}

// healthTracker keeps counters and a sliding window of latencies.
type healthTracker struct {
	mu        sync.Mutex
	latencies []time.Duration
	status    HealthStatus
}

func newHealthTracker() *healthTracker {
	return &healthTracker{latencies: make([]time.Duration, 0, healthLatencyWindow)}
}

func (h *healthTracker) record(outcome string, latency time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.status.Requests++
	switch outcome {
	case metrics.OutcomeSuccess, metrics.OutcomeAPIError:
		h.status.LastSuccessAt = now
	default:
		h.status.Failures++
		h.status.LastFailureAt = now
		h.status.LastFailure = outcome
	}

	h.latencies = append(h.latencies, latency)
	if len(h.latencies) > healthLatencyWindow {
		h.latencies = h.latencies[1:]
	}
}

func (h *healthTracker) snapshot() HealthStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.status
	if s.Requests > 0 {
		s.ErrorRate = float64(s.Failures) / float64(s.Requests)
	}
	if len(h.latencies) > 0 {
		var total time.Duration
		for _, l := range h.latencies {
			total += l
		}
		s.AverageLatency = total / time.Duration(len(h.latencies))
	}
	if s.Requests >= minDegradedSamples {
		s.Degraded = s.ErrorRate > degradedErrorRate || s.AverageLatency > slowResponseThreshold
	}
	return s
}
