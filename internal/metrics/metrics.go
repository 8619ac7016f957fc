package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "codegraph"

var (
	// IngestRecords counts well-formed extractor records. Labels: source
	IngestRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "records_total",
		Help:      "Extractor records decoded, by source",
	}, []string{"source"})

	// IngestSkipped counts malformed extractor lines. Labels: source
	IngestSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "skipped_lines_total",
		Help:      "Malformed extractor lines dropped, by source",
	}, []string{"source"})

	// CallResolutions counts call references by outcome.
	// Labels: reason (same_file, first_match, no_candidate)
	CallResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "call_resolutions_total",
		Help:      "Call references processed by the name resolver, by reason",
	}, []string{"reason"})

	// IngestRuns counts ingestion runs. Labels: status (success, error)
	IngestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "runs_total",
		Help:      "Ingestion runs by outcome",
	}, []string{"status"})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "duration_seconds",
		Help:      "Wall time of a full ingestion run",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	// QueryTotal counts query operations. Labels: op, code (OK or an error code)
	QueryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "requests_total",
		Help:      "Query operations by name and result code",
	}, []string{"op", "code"})

	// QueryDuration measures query latency. Labels: op
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "duration_seconds",
		Help:      "Query operation latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"op"})

	// Reloads counts graph swaps. Labels: trigger (startup, tool, signal, watch, http), status
	Reloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "reloads_total",
		Help:      "Graph index reloads by trigger and outcome",
	}, []string{"trigger", "status"})

	GraphSymbols = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "symbols",
		Help:      "Symbols in the currently loaded graph",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "edges",
		Help:      "Edges in the currently loaded graph",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
