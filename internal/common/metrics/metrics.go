package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vera_analysis_requests_total",
			Help: "Total number of analysis requests by endpoint",
		},
		[]string{"endpoint"},
	)

	AnalysisRiskLevel = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vera_analysis_risk_level_total",
			Help: "Total number of analyses by resulting risk classification",
		},
		[]string{"level"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "vera_analysis_duration_seconds",
			Help: "Duration of analysis processing in seconds",
		},
		[]string{"endpoint"},
	)

	AnalysisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vera_analysis_errors_total",
			Help: "Total number of rejected requests by error code",
		},
		[]string{"endpoint", "error_code"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vera_analysis_cache_hits_total",
			Help: "Result cache hits and misses",
		},
		[]string{"outcome"},
	)
)
