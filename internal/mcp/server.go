// Package mcp exposes the graph queries as Model Context Protocol tools.
package mcp

import (
	"fmt"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
var Version = "dev"

func NewMCPServer(src GraphSource) *mcp.Server {
	service := NewService(src)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "graphword",
		Version: Version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "shortest_path",
		Description: "Find the minimum-weight chain of one-letter changes from one word to another.",
	}, service.ShortestPath)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "all_paths",
		Description: "List simple paths between two words, bounded by depth and count.",
		InputSchema: nonNegative[AllPathsArgs]("max_depth", "max_paths"),
	}, service.AllPaths)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "graph_clusters",
		Description: "List groups of words connected by one-letter changes, largest first.",
		InputSchema: nonNegative[ClustersArgs]("limit"),
	}, service.Clusters)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "nodes_by_degree",
		Description: "List words with exactly the given number of connections.",
		InputSchema: nonNegative[NodesByDegreeArgs]("degree"),
	}, service.NodesByDegree)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Report node, edge and isolated-word counts of the served graph.",
	}, service.Stats)

	s.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "word",
		URITemplate: wordURITemplate,
		Description: "Successors, predecessors and degree of a word.",
		MIMEType:    "application/json",
	}, service.Word)

	return s
}

// nonNegative infers the input schema of In and sets a minimum of zero on
// the named integer properties.
func nonNegative[In any](props ...string) *jsonschema.Schema {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		panic(fmt.Sprintf("mcp: inferring input schema: %v", err))
	}
	zero := 0.0
	for _, name := range props {
		if p, ok := schema.Properties[name]; ok {
			p.Minimum = &zero
		}
	}
	return schema
}

// NewHTTPHandler serves the tools over streamable HTTP.
func NewHTTPHandler(src GraphSource) http.Handler {
	s := NewMCPServer(src)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s }, nil)
}
