package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters served by the /debug/metrics/prometheus endpoint.
var (
	GradientsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gradora",
		Name:      "gradients_created_total",
		Help:      "Number of gradient records created",
	})

	GradientsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gradora",
		Name:      "gradients_deleted_total",
		Help:      "Number of gradient records deleted",
	})

	UploadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gradora",
		Name:      "uploads_failed_total",
		Help:      "Number of uploads that failed before a record was written",
	})

	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gradora",
		Name:      "auth_failures_total",
		Help:      "Number of rejected authentication attempts",
	})
)
