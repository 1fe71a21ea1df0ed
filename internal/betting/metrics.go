package betting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ResolvesTotal tracks successful calldata resolutions.
	ResolvesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_betting_resolves_total",
		Help: "Total number of successful calldata resolutions",
	})

	// ResolveErrorsTotal tracks failed calldata resolutions.
	ResolveErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_betting_resolve_errors_total",
		Help: "Total number of failed calldata resolutions",
	})

	// ResolveDurationSeconds tracks calldata resolution latency.
	ResolveDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "onit_betting_resolve_duration_seconds",
		Help:    "Duration of calldata resolution requests",
		Buckets: prometheus.DefBuckets,
	})

	// SubmissionsTotal tracks submissions reaching a terminal success state.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onit_betting_submissions_total",
		Help: "Total number of bet submissions by terminal state",
	}, []string{"state"})

	// SubmissionFailuresTotal tracks failed submissions by reason.
	SubmissionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onit_betting_submission_failures_total",
		Help: "Total number of failed bet submissions by reason",
	}, []string{"reason"})
)
