package mcp

import "github.com/sanonone/graphword/pkg/query"

// --- Tool Arguments ---

type ShortestPathArgs struct {
	From string `json:"from" jsonschema:"Source word"`
	To   string `json:"to" jsonschema:"Target word"`
}

type AllPathsArgs struct {
	From     string `json:"from" jsonschema:"Source word"`
	To       string `json:"to" jsonschema:"Target word"`
	MaxDepth *int   `json:"max_depth,omitempty" jsonschema:"Maximum edges per path (default 5, capped at 12, 0 returns no paths)"`
	MaxPaths *int   `json:"max_paths,omitempty" jsonschema:"Maximum number of paths returned (default 50, capped at 1000, 0 returns no paths)"`
}

type ClustersArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Only return the largest N clusters (0 returns all)"`
}

type NodesByDegreeArgs struct {
	Degree int `json:"degree" jsonschema:"Exact total degree (in + out)"`
}

type StatsArgs struct{}

// --- Tool Results ---

type PathResult struct {
	Path        []string `json:"path"`
	TotalWeight float64  `json:"total_weight"`
}

type AllPathsResult struct {
	WeightedPaths []query.Path `json:"weighted_paths"`
}

type ClustersResult struct {
	Clusters      [][]string `json:"clusters"`
	TotalClusters int        `json:"total_clusters"`
}

type NodesResult struct {
	Nodes []string `json:"nodes"`
}

type StatsResult struct {
	Nodes          int    `json:"nodes_count"`
	Edges          int    `json:"edges_count"`
	Isolated       int    `json:"isolated_count"`
	MaxDegree      int    `json:"max_degree"`
	ActiveSnapshot string `json:"active_snapshot"`
	Filtered       bool   `json:"filtered"`
}

// WordResult is the body of a word resource.
type WordResult struct {
	Word         string   `json:"word"`
	Successors   []string `json:"successors"`
	Predecessors []string `json:"predecessors"`
	Degree       int      `json:"degree"`
}
