package graph

import (
	"math"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Directed returns a gonum view of g. Node ids are the dense ids reported by
// ID, so results can be mapped back with Word.
//
// The view is built once per Graph and shared; callers must not modify it.
func (g *Graph) Directed() gonum.WeightedDirected {
	g.dgOnce.Do(func() {
		dg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
		for id := range g.words {
			dg.AddNode(simple.Node(int64(id)))
		}
		for u, adj := range g.out {
			for v, w := range adj {
				dg.SetWeightedEdge(simple.WeightedEdge{
					F: simple.Node(int64(u)),
					T: simple.Node(v),
					W: w,
				})
			}
		}
		g.dg = dg
	})
	return g.dg
}

// Undirected returns the gonum view of g with edge direction ignored.
func (g *Graph) Undirected() gonum.Undirected {
	return gonum.Undirect{G: g.Directed()}
}
