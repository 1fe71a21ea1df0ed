package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ForwardedTotal tracks requests forwarded to the upstream API.
	ForwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_proxy_forwarded_total",
		Help: "Total number of requests forwarded to the upstream API",
	})

	// ForwardErrorsTotal tracks forwarding failures.
	ForwardErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_proxy_forward_errors_total",
		Help: "Total number of upstream forwarding failures",
	})
)
