package server

import (
	"github.com/sanonone/graphword/pkg/query"
)

// Client-facing messages. They are part of the public contract and are kept
// byte-for-byte stable.
const (
	msgNodeNotFound = "Uno o ambos nodos no existen"
	msgNoPath       = "No hay camino entre los nodos"
	msgInternal     = "Error interno del servidor"
	msgReset        = "Grafo restaurado al estado original y archivos de grafo filtrado eliminados."
	msgNotFound     = "Endpoint no encontrado"
	statusSuccess   = "success"
)

// AllPathsResponse is returned by GET /all-paths.
type AllPathsResponse struct {
	WeightedPaths []query.Path `json:"weighted_paths"`
}

// MaximumDistanceResponse is returned by GET /maximum-distance.
type MaximumDistanceResponse struct {
	MaximumDistance int `json:"maximum_distance"`
}

// ClustersResponse is returned by GET /clusters.
type ClustersResponse struct {
	Clusters      [][]string `json:"clusters"`
	TotalClusters int        `json:"total_clusters"`
}

// HighConnectivityResponse is returned by GET /high-connectivity-nodes.
type HighConnectivityResponse struct {
	Nodes []string `json:"high_connectivity_nodes"`
}

// NodesByDegreeResponse is returned by GET /nodes-by-degree.
type NodesByDegreeResponse struct {
	Nodes []string `json:"nodes"`
}

// IsolatedNodesResponse is returned by GET /isolated-nodes.
type IsolatedNodesResponse struct {
	Nodes []string `json:"isolated_nodes"`
}

// FilterResponse is returned by GET /filter-graph.
type FilterResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Nodes    int    `json:"nodes_count"`
	Edges    int    `json:"edges_count"`
	FilePath string `json:"file_path"`
}

// StatusResponse is returned by operations without a payload.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	Nodes          int    `json:"nodes_count"`
	Edges          int    `json:"edges_count"`
	ActiveSnapshot string `json:"active_snapshot"`
	Filtered       bool   `json:"filtered"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
