// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat turns handled, by mode, detected intent and reply status",
		},
		[]string{"mode", "intent", "status"},
	)

	ContextFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "context_fetch_total",
			Help: "Context fetches by source and outcome",
		},
		[]string{"source", "status"},
	)

	LLMCompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "Duration of chat-completion calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"purpose"},
	)

	EmailSummaries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_summaries_total",
			Help: "Email summary attempts by outcome",
		},
		[]string{"status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)

// Fetch outcomes.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFatal    = "fatal"
	StatusSkipped  = "skipped"
)
