package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscope_graph_nodes_total",
		Help: "Number of dependency nodes in the most recently built graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscope_graph_edges_total",
		Help: "Number of parent/child edges in the most recently built graph.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depscope_analysis_seconds",
		Help:    "Time spent in each analysis stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscope_recommendations_total",
		Help: "Total number of recommendations emitted, by category.",
	}, []string{"category"})

	ManifestReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_manifest_reloads_total",
		Help: "Total number of manifest reloads triggered in watch mode.",
	})

	ManifestRecordsExcluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_manifest_records_excluded_total",
		Help: "Total number of manifest records dropped by exclude patterns.",
	})

	HistoryWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_history_write_errors_total",
		Help: "Total number of failed history store writes.",
	})
)
