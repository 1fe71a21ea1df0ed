package markets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestsTotal tracks successful market API requests.
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_markets_requests_total",
		Help: "Total number of successful market API requests",
	})

	// RequestErrorsTotal tracks failed market API requests.
	RequestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_markets_request_errors_total",
		Help: "Total number of failed market API requests",
	})

	// PagesTotal tracks pages fetched during list pagination.
	PagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_markets_pages_total",
		Help: "Total number of market list pages fetched",
	})

	// RequestDurationSeconds tracks market API request latency.
	RequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "onit_markets_request_duration_seconds",
		Help:    "Duration of market API requests",
		Buckets: prometheus.DefBuckets,
	})
)
