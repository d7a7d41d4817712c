// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeatureEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_events_total",
			Help: "Total number of feature request events",
		},
		[]string{"action"},
	)

	AggregateScoreHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feature_aggregate_score",
			Help:    "Distribution of recomputed aggregate scores",
			Buckets: prometheus.LinearBuckets(0, 5, 16),
		},
		[]string{"priority"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
