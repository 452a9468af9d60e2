package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskbox_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// OTPIssued counts issued one-time codes.
	OTPIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskbox_otp_issued_total",
			Help: "Total number of one-time codes issued",
		},
	)

	// OTPVerifications counts verification attempts by outcome (success|mismatch|not_found|error).
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskbox_otp_verifications_total",
			Help: "Total number of one-time code verification attempts",
		},
		[]string{"outcome"},
	)

	// TodoMutations counts todo write operations by kind (create|update|toggle|delete).
	TodoMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskbox_todo_mutations_total",
			Help: "Total number of todo mutations",
		},
		[]string{"operation"},
	)

	// DeferredTaskFailures counts background tasks that ended in error or panic.
	DeferredTaskFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskbox_deferred_task_failures_total",
			Help: "Total number of failed deferred tasks",
		},
		[]string{"task"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskbox_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
