package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global collectors, registered on the default registry by promauto.

var (
	// HttpRequestsTotal counts requests by method, path and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphword_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HttpRequestDuration measures server response time.
	// all-paths and maximum-distance dominate the upper buckets on big graphs.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphword_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// GraphNodes tracks the node count of the original and current graph.
	GraphNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphword_graph_nodes",
			Help: "Number of nodes in the served graph",
		},
		[]string{"state"},
	)

	// GraphEdges tracks the edge count of the original and current graph.
	GraphEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphword_graph_edges",
			Help: "Number of directed edges in the served graph",
		},
		[]string{"state"},
	)

	// GraphSwapsTotal counts replacements of the current graph (filter, reset, reload).
	GraphSwapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphword_graph_swaps_total",
			Help: "Number of times the served graph was replaced",
		},
		[]string{"op"},
	)

	// BuilderEdgesTotal counts directed edges emitted by the graph builder per word length.
	BuilderEdgesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphword_builder_edges_emitted_total",
			Help: "Directed edges emitted by the graph builder",
		},
		[]string{"length"},
	)

	// BuilderLengthDuration observes the time spent expanding and snapshotting one word length.
	BuilderLengthDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphword_builder_length_duration_seconds",
			Help:    "Time to expand and snapshot one word length",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"length"},
	)

	// EventLogWritesTotal counts event-log appends by outcome (ok, reset, error).
	EventLogWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphword_event_log_writes_total",
			Help: "Event log append attempts by outcome",
		},
		[]string{"result"},
	)
)
