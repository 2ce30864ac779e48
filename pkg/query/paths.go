// Package query implements the read-only algorithms served by graphword.
//
// Every function takes the *graph.Graph it works on. Callers acquire the
// current graph once per request and pass it down, so a concurrent filter or
// reset never changes the graph under a running query.
package query

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/sanonone/graphword/pkg/graph"
)

// Limits applied to AllPaths.
const (
	// DefaultMaxDepth is the default maximum number of edges per path.
	DefaultMaxDepth = 5

	// DefaultMaxPaths is the default maximum number of paths returned.
	DefaultMaxPaths = 50

	// MaxDepthLimit caps a caller-supplied depth.
	MaxDepthLimit = 12

	// MaxPathsLimit caps a caller-supplied path count.
	MaxPathsLimit = 1000

	// contextCheckInterval is how many expansions run between context checks.
	contextCheckInterval = 256
)

// Path is a node sequence and the sum of the edge weights along it.
type Path struct {
	Nodes       []string `json:"path"`
	TotalWeight float64  `json:"total_weight"`
}

// Hops returns the number of edges in the path.
func (p Path) Hops() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

func requireNodes(g *graph.Graph, words ...string) error {
	for _, w := range words {
		if !g.HasNode(w) {
			return fmt.Errorf("%w: %q", ErrNodeNotFound, w)
		}
	}
	return nil
}

// PathWeight sums the weights of consecutive edges of nodes.
// A missing edge makes the path invalid and returns ok=false.
func PathWeight(g *graph.Graph, nodes []string) (float64, bool) {
	total := 0.0
	for i := 0; i+1 < len(nodes); i++ {
		w, ok := g.Weight(nodes[i], nodes[i+1])
		if !ok {
			return 0, false
		}
		total += w
	}
	return total, true
}

// ShortestPath returns the minimum-weight directed path from a to b.
func ShortestPath(g *graph.Graph, a, b string) (Path, error) {
	if err := requireNodes(g, a, b); err != nil {
		return Path{}, err
	}

	from, _ := g.ID(a)
	to, _ := g.ID(b)

	shortest := path.DijkstraFrom(simple.Node(from), g.Directed())
	nodes, _ := shortest.To(to)
	if len(nodes) == 0 {
		return Path{}, fmt.Errorf("%w: %q -> %q", ErrNoPath, a, b)
	}

	words := make([]string, len(nodes))
	for i, n := range nodes {
		words[i] = g.Word(n.ID())
	}
	total, _ := PathWeight(g, words)
	return Path{Nodes: words, TotalWeight: total}, nil
}

// AllPathsOptions bounds an AllPaths enumeration. A zero bound yields no
// paths; use DefaultAllPathsOptions for the served defaults.
type AllPathsOptions struct {
	// MaxDepth is the maximum number of edges per path.
	MaxDepth int

	// MaxPaths stops the enumeration once this many paths are found.
	MaxPaths int
}

// DefaultAllPathsOptions returns the bounds used when a caller gives none.
func DefaultAllPathsOptions() AllPathsOptions {
	return AllPathsOptions{MaxDepth: DefaultMaxDepth, MaxPaths: DefaultMaxPaths}
}

func (o AllPathsOptions) normalize() (AllPathsOptions, error) {
	if o.MaxDepth < 0 || o.MaxPaths < 0 {
		return o, fmt.Errorf("%w: max_depth=%d max_paths=%d", ErrNegativeBound, o.MaxDepth, o.MaxPaths)
	}
	o.MaxDepth = min(o.MaxDepth, MaxDepthLimit)
	o.MaxPaths = min(o.MaxPaths, MaxPathsLimit)
	return o, nil
}

// AllPaths enumerates simple directed paths from a to b with at most
// opts.MaxDepth edges. The search stops as soon as opts.MaxPaths paths have
// been collected. Successors are visited in lexicographic order, so the
// result is deterministic for a given graph.
func AllPaths(ctx context.Context, g *graph.Graph, a, b string, opts AllPathsOptions) ([]Path, error) {
	if err := requireNodes(g, a, b); err != nil {
		return nil, err
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	s := &pathSearch{
		ctx:     ctx,
		g:       g,
		target:  b,
		opts:    opts,
		onPath:  map[string]bool{a: true},
		stack:   []string{a},
		results: []Path{},
	}
	// No simple path of one or more edges returns to its start.
	if a == b || opts.MaxDepth == 0 || opts.MaxPaths == 0 {
		return s.results, nil
	}
	if err := s.walk(a, 0); err != nil {
		return nil, err
	}
	return s.results, nil
}

type pathSearch struct {
	ctx     context.Context
	g       *graph.Graph
	target  string
	opts    AllPathsOptions
	onPath  map[string]bool
	stack   []string
	steps   int
	results []Path
}

func (s *pathSearch) done() bool {
	return len(s.results) >= s.opts.MaxPaths
}

func (s *pathSearch) walk(node string, depth int) error {
	if depth == s.opts.MaxDepth {
		return nil
	}
	for _, next := range s.g.Successors(node) {
		if s.done() {
			return nil
		}
		if s.onPath[next] {
			continue
		}

		s.steps++
		if s.steps%contextCheckInterval == 0 {
			if err := s.ctx.Err(); err != nil {
				return err
			}
		}

		s.stack = append(s.stack, next)

		if next == s.target {
			nodes := append([]string(nil), s.stack...)
			total, _ := PathWeight(s.g, nodes)
			s.results = append(s.results, Path{Nodes: nodes, TotalWeight: total})
		} else {
			s.onPath[next] = true
			err := s.walk(next, depth+1)
			delete(s.onPath, next)
			if err != nil {
				return err
			}
		}

		s.stack = s.stack[:len(s.stack)-1]
	}
	return nil
}
