// Package graph provides the in-memory word graph served by graphword.
//
// A Graph is a directed, weighted graph with at most one edge per ordered
// pair of words. Nodes are tracked explicitly, so a word can be present with
// no edges at all (an isolated node).
//
// # Lifecycle
//
// Graphs are assembled with a Builder and become immutable once Freeze is
// called. A frozen *Graph is safe for concurrent readers; "modifying" the
// served graph always means building a new one and swapping the pointer
// (see pkg/engine).
package graph

import (
	"sort"
	"sync"

	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is a directed, weighted relation between two words.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph is an immutable directed weighted word graph.
type Graph struct {
	// index maps word -> dense id and keeps words in lexicographic order.
	index *btree.Map[string, int64]
	words []string
	out   []map[int64]float64
	in    []map[int64]float64
	edges int

	dgOnce sync.Once
	dg     *simple.WeightedDirectedGraph
}

// Builder accumulates nodes and edges for a new Graph.
// It is not safe for concurrent use.
type Builder struct {
	g *Graph
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{g: &Graph{index: new(btree.Map[string, int64])}}
}

// AddNode registers word (if missing) and returns its id.
func (b *Builder) AddNode(word string) int64 {
	if b.g == nil {
		panic("graph: builder used after Freeze")
	}
	return b.g.addNode(word)
}

// AddEdge adds or replaces the edge src->dst. Self loops are ignored and
// reported with a false return.
func (b *Builder) AddEdge(src, dst string, weight float64) bool {
	if b.g == nil {
		panic("graph: builder used after Freeze")
	}
	if src == dst {
		return false
	}
	u := b.g.addNode(src)
	v := b.g.addNode(dst)
	if _, exists := b.g.out[u][v]; !exists {
		b.g.edges++
	}
	b.g.out[u][v] = weight
	b.g.in[v][u] = weight
	return true
}

// Freeze returns the built graph. The builder must not be used afterwards.
func (b *Builder) Freeze() *Graph {
	g := b.g
	b.g = nil
	return g
}

// Empty returns a graph with no nodes.
func Empty() *Graph {
	return NewBuilder().Freeze()
}

// FromEdges builds a graph from an edge slice.
func FromEdges(edges []Edge) *Graph {
	b := NewBuilder()
	for _, e := range edges {
		b.AddEdge(e.Source, e.Target, e.Weight)
	}
	return b.Freeze()
}

func (g *Graph) addNode(word string) int64 {
	if id, ok := g.index.Get(word); ok {
		return id
	}
	id := int64(len(g.words))
	g.index.Set(word, id)
	g.words = append(g.words, word)
	g.out = append(g.out, make(map[int64]float64))
	g.in = append(g.in, make(map[int64]float64))
	return id
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.words) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return g.edges }

// HasNode reports whether word is a node of g.
func (g *Graph) HasNode(word string) bool {
	_, ok := g.index.Get(word)
	return ok
}

// ID returns the dense id of word.
func (g *Graph) ID(word string) (int64, bool) {
	return g.index.Get(word)
}

// Word returns the word for a dense id.
func (g *Graph) Word(id int64) string {
	return g.words[id]
}

// Nodes returns every word in lexicographic order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, g.index.Len())
	g.index.Scan(func(word string, _ int64) bool {
		nodes = append(nodes, word)
		return true
	})
	return nodes
}

// Edges returns every edge ordered by source, then target.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	g.index.Scan(func(word string, id int64) bool {
		for _, dst := range g.sortedWords(g.out[id]) {
			v, _ := g.index.Get(dst)
			edges = append(edges, Edge{Source: word, Target: dst, Weight: g.out[id][v]})
		}
		return true
	})
	return edges
}

// Weight returns the weight of src->dst.
func (g *Graph) Weight(src, dst string) (float64, bool) {
	u, ok := g.index.Get(src)
	if !ok {
		return 0, false
	}
	v, ok := g.index.Get(dst)
	if !ok {
		return 0, false
	}
	w, ok := g.out[u][v]
	return w, ok
}

// Successors returns the targets of word's outgoing edges, sorted.
func (g *Graph) Successors(word string) []string {
	id, ok := g.index.Get(word)
	if !ok {
		return nil
	}
	return g.sortedWords(g.out[id])
}

// Predecessors returns the sources of word's incoming edges, sorted.
func (g *Graph) Predecessors(word string) []string {
	id, ok := g.index.Get(word)
	if !ok {
		return nil
	}
	return g.sortedWords(g.in[id])
}

// OutDegree returns the number of outgoing edges of word.
func (g *Graph) OutDegree(word string) int {
	id, ok := g.index.Get(word)
	if !ok {
		return 0
	}
	return len(g.out[id])
}

// InDegree returns the number of incoming edges of word.
func (g *Graph) InDegree(word string) int {
	id, ok := g.index.Get(word)
	if !ok {
		return 0
	}
	return len(g.in[id])
}

// Degree returns in-degree plus out-degree.
func (g *Graph) Degree(word string) int {
	id, ok := g.index.Get(word)
	if !ok {
		return 0
	}
	return len(g.out[id]) + len(g.in[id])
}

// Subgraph returns a new graph holding the edges for which keep returns
// true. Only words touched by a kept edge become nodes.
func (g *Graph) Subgraph(keep func(Edge) bool) *Graph {
	b := NewBuilder()
	for _, e := range g.Edges() {
		if keep(e) {
			b.AddEdge(e.Source, e.Target, e.Weight)
		}
	}
	return b.Freeze()
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		index: new(btree.Map[string, int64]),
		words: append([]string(nil), g.words...),
		out:   make([]map[int64]float64, len(g.out)),
		in:    make([]map[int64]float64, len(g.in)),
		edges: g.edges,
	}
	// Rebuilt rather than Copy()'d: Copy mutates the source tree's state.
	g.index.Scan(func(word string, id int64) bool {
		c.index.Set(word, id)
		return true
	})
	for i := range g.out {
		c.out[i] = make(map[int64]float64, len(g.out[i]))
		for k, v := range g.out[i] {
			c.out[i][k] = v
		}
		c.in[i] = make(map[int64]float64, len(g.in[i]))
		for k, v := range g.in[i] {
			c.in[i][k] = v
		}
	}
	return c
}

// Equal reports whether g and o have the same nodes and the same weighted edges.
func (g *Graph) Equal(o *Graph) bool {
	if g.NodeCount() != o.NodeCount() || g.EdgeCount() != o.EdgeCount() {
		return false
	}
	for _, w := range g.words {
		if !o.HasNode(w) {
			return false
		}
	}
	for _, e := range g.Edges() {
		w, ok := o.Weight(e.Source, e.Target)
		if !ok || w != e.Weight {
			return false
		}
	}
	return true
}

func (g *Graph) sortedWords(adj map[int64]float64) []string {
	words := make([]string, 0, len(adj))
	for id := range adj {
		words = append(words, g.words[id])
	}
	sort.Strings(words)
	return words
}
