package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/graphword/pkg/engine"
	"github.com/sanonone/graphword/pkg/graph"
	"github.com/sanonone/graphword/pkg/query"
)

// GraphSource is the part of the engine the tools read from.
type GraphSource interface {
	Current() *graph.Graph
	View() engine.View
}

type Service struct {
	source GraphSource
}

func NewService(src GraphSource) *Service {
	return &Service{source: src}
}

// --- Tool Handlers ---
// Errors returned here are reported to the client as tool errors.

func (s *Service) ShortestPath(ctx context.Context, req *mcp.CallToolRequest, args ShortestPathArgs) (*mcp.CallToolResult, PathResult, error) {
	p, err := query.ShortestPath(s.source.Current(), args.From, args.To)
	if err != nil {
		return nil, PathResult{}, err
	}
	return nil, PathResult{Path: p.Nodes, TotalWeight: p.TotalWeight}, nil
}

func (s *Service) AllPaths(ctx context.Context, req *mcp.CallToolRequest, args AllPathsArgs) (*mcp.CallToolResult, AllPathsResult, error) {
	opts := query.DefaultAllPathsOptions()
	if args.MaxDepth != nil {
		opts.MaxDepth = *args.MaxDepth
	}
	if args.MaxPaths != nil {
		opts.MaxPaths = *args.MaxPaths
	}
	paths, err := query.AllPaths(ctx, s.source.Current(), args.From, args.To, opts)
	if err != nil {
		return nil, AllPathsResult{}, err
	}
	return nil, AllPathsResult{WeightedPaths: paths}, nil
}

func (s *Service) Clusters(ctx context.Context, req *mcp.CallToolRequest, args ClustersArgs) (*mcp.CallToolResult, ClustersResult, error) {
	clusters := query.Clusters(s.source.Current())
	total := len(clusters)
	if args.Limit > 0 && args.Limit < total {
		clusters = clusters[:args.Limit]
	}
	return nil, ClustersResult{Clusters: clusters, TotalClusters: total}, nil
}

func (s *Service) NodesByDegree(ctx context.Context, req *mcp.CallToolRequest, args NodesByDegreeArgs) (*mcp.CallToolResult, NodesResult, error) {
	return nil, NodesResult{Nodes: query.NodesByDegree(s.source.Current(), args.Degree)}, nil
}

func (s *Service) Stats(ctx context.Context, req *mcp.CallToolRequest, args StatsArgs) (*mcp.CallToolResult, StatsResult, error) {
	v := s.source.View()
	st := query.Summary(v.Graph)
	return nil, StatsResult{
		Nodes:          st.Nodes,
		Edges:          st.Edges,
		Isolated:       st.Isolated,
		MaxDegree:      st.MaxDeg,
		ActiveSnapshot: v.Path,
		Filtered:       v.Filtered,
	}, nil
}
