// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websearch_requests_total",
			Help: "Web search requests by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	SearchRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websearch_retries_total",
			Help: "Web search retry attempts by backend",
		},
		[]string{"backend"},
	)

	GenerationSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_steps_total",
			Help: "Per-chunk generation steps by outcome",
		},
		[]string{"operation", "outcome"},
	)

	GenerationStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "generation_step_duration_seconds",
			Help: "Duration of a single per-chunk generation step",
		},
		[]string{"operation"},
	)
)
