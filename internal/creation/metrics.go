package creation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// CreatesTotal tracks successful market creations.
	CreatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_creation_markets_total",
		Help: "Total number of markets created",
	})

	// CreateErrorsTotal tracks failed market creations.
	CreateErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onit_creation_errors_total",
		Help: "Total number of failed market creations",
	})
)
