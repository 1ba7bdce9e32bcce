package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gait_analyses_total",
		Help: "Total number of completed analyses, by overall level",
	}, []string{"level"})

	AnalysisErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gait_analysis_errors_total",
		Help: "Total number of analyses that failed",
	})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gait_analysis_duration_seconds",
		Help:    "Wall-clock duration of the analysis pipeline",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	CyclesDetected = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gait_cycles_detected",
		Help:    "Gait cycles detected per analysed sequence",
		Buckets: []float64{0, 1, 2, 4, 6, 10, 20, 40},
	})

	FramesAnalyzed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gait_frames_analyzed",
		Help:    "Frame count per analysed sequence",
		Buckets: []float64{30, 60, 120, 300, 600, 1800, 3600},
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gait_cache_hits_total",
		Help: "Analyses served from the result cache",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gait_cache_misses_total",
		Help: "Analyses that required a full pipeline run",
	})
)
