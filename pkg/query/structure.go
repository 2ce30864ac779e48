package query

import (
	"context"
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/sanonone/graphword/pkg/graph"
)

// MaximumDistance returns the largest finite hop distance between any two
// nodes, ignoring weights. A graph whose nodes have no edges yields 0.
func MaximumDistance(ctx context.Context, g *graph.Graph) (int, error) {
	if g.NodeCount() == 0 {
		return 0, ErrEmptyGraph
	}

	dg := g.Directed()
	maxDist := 0
	nodes := dg.Nodes()
	for nodes.Next() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		var bf traverse.BreadthFirst
		bf.Walk(dg, nodes.Node(), func(_ gonum.Node, depth int) bool {
			if depth > maxDist {
				maxDist = depth
			}
			return false
		})
	}
	return maxDist, nil
}

// Clusters returns the weakly connected components of g. Words inside a
// cluster are sorted; clusters are ordered by size, largest first.
func Clusters(g *graph.Graph) [][]string {
	components := topo.ConnectedComponents(g.Undirected())

	clusters := make([][]string, 0, len(components))
	for _, comp := range components {
		words := make([]string, len(comp))
		for i, n := range comp {
			words[i] = g.Word(n.ID())
		}
		sort.Strings(words)
		clusters = append(clusters, words)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})
	return clusters
}

// HighConnectivityNodes returns the words whose total degree is at least minDegree.
func HighConnectivityNodes(g *graph.Graph, minDegree int) []string {
	return selectNodes(g, func(degree int) bool { return degree >= minDegree })
}

// NodesByDegree returns the words whose total degree equals degree.
func NodesByDegree(g *graph.Graph, degree int) []string {
	return selectNodes(g, func(d int) bool { return d == degree })
}

// IsolatedNodes returns the words with no edges.
func IsolatedNodes(g *graph.Graph) []string {
	return selectNodes(g, func(d int) bool { return d == 0 })
}

func selectNodes(g *graph.Graph, keep func(degree int) bool) []string {
	out := []string{}
	for _, w := range g.Nodes() {
		if keep(g.Degree(w)) {
			out = append(out, w)
		}
	}
	return out
}

// Stats summarises a graph.
type Stats struct {
	Nodes    int `json:"nodes_count"`
	Edges    int `json:"edges_count"`
	Isolated int `json:"isolated_count"`
	MaxDeg   int `json:"max_degree"`
}

// Summary computes Stats for g.
func Summary(g *graph.Graph) Stats {
	s := Stats{Nodes: g.NodeCount(), Edges: g.EdgeCount()}
	for _, w := range g.Nodes() {
		d := g.Degree(w)
		if d == 0 {
			s.Isolated++
		}
		if d > s.MaxDeg {
			s.MaxDeg = d
		}
	}
	return s
}
