package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of outbound calls (embedding provider, vector store, mailer)
	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Latency of outbound network requests",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"component", "operation", "target", "status"})

	// Total outbound calls by outcome
	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Total number of outbound network requests",
	}, []string{"component", "operation", "target", "status"})
)

func Init() {
	prometheus.MustRegister(
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest records the duration and outcome of one outbound call.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}

	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(time.Since(start).Seconds())
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}
