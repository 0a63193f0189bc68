// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests by route and status",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "api_request_duration_seconds",
			Help: "Duration of API request processing in seconds",
		},
		[]string{"route"},
	)

	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_calls_total",
			Help: "Total number of upstream provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	AnalysisFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_fallbacks_total",
			Help: "Total number of defaulted analysis fields by field",
		},
		[]string{"field"},
	)
)
