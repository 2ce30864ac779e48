package query

import "errors"

// Sentinel errors for graph queries.
var (
	// ErrNodeNotFound is returned when a query references a word that is not
	// a node of the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPath is returned when the target is unreachable from the source.
	ErrNoPath = errors.New("no path between nodes")

	// ErrEmptyGraph is returned by reductions that are undefined on a graph
	// without nodes.
	ErrEmptyGraph = errors.New("graph is empty")

	// ErrNegativeBound is returned when an AllPaths bound is below zero.
	ErrNegativeBound = errors.New("path bound must not be negative")
)
