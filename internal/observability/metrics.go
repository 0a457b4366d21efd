package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	toolInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twincat_mcp",
			Subsystem: "dispatch",
			Name:      "tool_invocations_total",
			Help:      "Tool dispatches by outcome.",
		},
		[]string{"tool", "outcome"},
	)
	guardDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twincat_mcp",
			Subsystem: "dispatch",
			Name:      "guard_denials_total",
			Help:      "Dispatches stopped by a safety guard.",
		},
		[]string{"tool", "guard"},
	)
	processDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "twincat_mcp",
			Subsystem: "supervisor",
			Name:      "process_duration_seconds",
			Help:      "External process wall time in seconds.",
			Buckets:   []float64{.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"tool", "outcome"},
	)
	armTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twincat_mcp",
			Subsystem: "gate",
			Name:      "arm_transitions_total",
			Help:      "Authorization gate transitions.",
		},
		[]string{"action"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twincat_mcp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total ops HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "twincat_mcp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Ops HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			toolInvocations, guardDenials, processDuration,
			armTransitions, httpRequests, httpDuration,
		)
	})
}

func RecordToolInvocation(tool, outcome string) {
	RegisterMetrics()
	toolInvocations.WithLabelValues(tool, outcome).Inc()
}

func RecordGuardDenial(tool, guard string) {
	RegisterMetrics()
	guardDenials.WithLabelValues(tool, guard).Inc()
}

func RecordProcessDuration(tool, outcome string, elapsed time.Duration) {
	RegisterMetrics()
	processDuration.WithLabelValues(tool, outcome).Observe(elapsed.Seconds())
}

func RecordArmTransition(action string) {
	RegisterMetrics()
	armTransitions.WithLabelValues(action).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
