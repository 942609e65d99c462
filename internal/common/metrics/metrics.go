// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_runs_completed_total",
			Help: "Total number of pipeline runs that reached Complete",
		},
	)

	PipelineRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_failed_total",
			Help: "Total number of pipeline runs that terminated in Failed",
		},
		[]string{"stage", "error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of pipeline stage processing in seconds",
		},
		[]string{"stage"},
	)

	ExtractionCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_cache_hits_total",
			Help: "Document extraction cache hits by document category",
		},
		[]string{"category"},
	)

	ScoringFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_scoring_fallbacks_total",
			Help: "Safe-default risk assessments returned instead of model output",
		},
		[]string{"cause"},
	)
)
