// Package engine owns the graphs served by graphword.
//
// It keeps two immutable graph versions: the original, loaded from the
// canonical edge-list file, and the current one, which filter operations
// replace with length-bounded sub-graphs. Both are published through atomic
// pointers, so queries never take a lock and always see one consistent
// version for their whole execution.
//
// Basic usage:
//
//	opts := engine.DefaultOptions("./datamart_graph/word_graph.txt")
//	eng, err := engine.Open(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/sanonone/graphword/pkg/graph"
	"github.com/sanonone/graphword/pkg/metrics"
)

// ErrInvalidBounds is returned by Filter when the length bounds are unusable.
var ErrInvalidBounds = errors.New("invalid length bounds")

const (
	filteredPrefix = "filtered_graph_"
	filteredExt    = ".txt"
)

// Options configures the Engine.
type Options struct {
	// GraphPath is the canonical edge-list file written by the builder.
	// A missing file is created empty and the engine serves an empty graph.
	GraphPath string

	// SnapshotDir receives filtered snapshots. Defaults to the directory of GraphPath.
	SnapshotDir string

	// Watch reloads the original graph when GraphPath is rewritten.
	Watch bool

	// WatchDebounce coalesces bursts of file events into one reload.
	// Default: 500ms.
	WatchDebounce time.Duration
}

// DefaultOptions returns the options used by the server.
func DefaultOptions(graphPath string) Options {
	return Options{
		GraphPath:     graphPath,
		SnapshotDir:   filepath.Dir(graphPath),
		WatchDebounce: 500 * time.Millisecond,
	}
}

// FilterResult describes the graph produced by Filter.
type FilterResult struct {
	Nodes int    `json:"nodes_count"`
	Edges int    `json:"edges_count"`
	Path  string `json:"file_path"`
}

// View is one published version of the current graph together with the
// file backing it. The three fields always change together.
type View struct {
	Graph    *graph.Graph
	Path     string
	Filtered bool
}

// Engine holds the original and current graph.
type Engine struct {
	opts Options

	original atomic.Pointer[graph.Graph]
	current  atomic.Pointer[View]

	// adminMu serialises operations that replace a graph (filter, reset, reload).
	adminMu sync.Mutex
	gen     uint64

	watcher   *snapshotWatcher
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Open loads the canonical graph and discovers the newest filtered snapshot.
//
// The original graph always comes from GraphPath. If filtered snapshots are
// present in SnapshotDir, the newest one (by the generation number embedded
// in its name) becomes the current graph.
func Open(opts Options) (*Engine, error) {
	if opts.GraphPath == "" {
		return nil, errors.New("engine: graph path is required")
	}
	if opts.SnapshotDir == "" {
		opts.SnapshotDir = filepath.Dir(opts.GraphPath)
	}
	if opts.WatchDebounce <= 0 {
		opts.WatchDebounce = 500 * time.Millisecond
	}
	if err := os.MkdirAll(opts.SnapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	e := &Engine{
		opts:   opts,
		closed: make(chan struct{}),
	}

	original, err := graph.Load(opts.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	e.original.Store(original)
	e.publish(original, opts.GraphPath, false)

	snapshots, err := e.filteredSnapshots()
	if err != nil {
		return nil, err
	}
	if n := len(snapshots); n > 0 {
		newest := snapshots[n-1]
		g, err := graph.Load(newest)
		if err != nil {
			return nil, fmt.Errorf("failed to load filtered snapshot %s: %w", newest, err)
		}
		e.publish(g, newest, true)
		e.gen = generationOf(newest)
		slog.Info("Resumed filtered snapshot", "path", newest, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	}

	slog.Info("Graph loaded",
		"path", opts.GraphPath,
		"nodes", original.NodeCount(),
		"edges", original.EdgeCount(),
	)
	metrics.GraphNodes.WithLabelValues("original").Set(float64(original.NodeCount()))
	metrics.GraphEdges.WithLabelValues("original").Set(float64(original.EdgeCount()))

	if opts.Watch {
		w, err := newSnapshotWatcher(opts.GraphPath, opts.WatchDebounce, e.onCanonicalChange)
		if err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", opts.GraphPath, err)
		}
		e.watcher = w
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			w.run(e.closed)
		}()
	}

	return e, nil
}

// Close stops the snapshot watcher. Graphs stay readable after Close.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		close(e.closed)
		if e.watcher != nil {
			err = e.watcher.close()
		}
		e.wg.Wait()
	})
	return err
}

// Current returns the graph queries run against.
func (e *Engine) Current() *graph.Graph {
	return e.current.Load().Graph
}

// View returns the current graph, its backing file and filter state as one
// consistent value.
func (e *Engine) View() View {
	return *e.current.Load()
}

// Original returns the unfiltered graph.
func (e *Engine) Original() *graph.Graph {
	return e.original.Load()
}

// ActiveSnapshot returns the file backing the current graph.
func (e *Engine) ActiveSnapshot() string {
	return e.current.Load().Path
}

// Filtered reports whether the current graph is a filtered sub-graph.
func (e *Engine) Filtered() bool {
	return e.current.Load().Filtered
}

// Filter replaces the current graph with the sub-graph of edges whose two
// endpoints have a length (in runes) within [minLen, maxLen], and persists it
// as a new filtered snapshot.
func (e *Engine) Filter(minLen, maxLen int) (FilterResult, error) {
	if minLen < 1 || minLen > maxLen {
		return FilterResult{}, fmt.Errorf("%w: min=%d max=%d", ErrInvalidBounds, minLen, maxLen)
	}

	e.adminMu.Lock()
	defer e.adminMu.Unlock()

	inRange := func(w string) bool {
		n := utf8.RuneCountInString(w)
		return n >= minLen && n <= maxLen
	}
	sub := e.current.Load().Graph.Subgraph(func(edge graph.Edge) bool {
		return inRange(edge.Source) && inRange(edge.Target)
	})

	gen := e.gen + 1
	path := filepath.Join(e.opts.SnapshotDir, filteredName(gen, minLen, maxLen))
	if err := graph.Snapshot(sub, path); err != nil {
		return FilterResult{}, fmt.Errorf("failed to write filtered snapshot: %w", err)
	}
	e.gen = gen

	e.publish(sub, path, true)
	metrics.GraphSwapsTotal.WithLabelValues("filter").Inc()
	slog.Info("Graph filtered", "min", minLen, "max", maxLen, "nodes", sub.NodeCount(), "edges", sub.EdgeCount(), "path", path)

	return FilterResult{Nodes: sub.NodeCount(), Edges: sub.EdgeCount(), Path: path}, nil
}

// Reset deletes every filtered snapshot and serves the original graph again.
// The original is restored from memory, never rediscovered from disk.
func (e *Engine) Reset() error {
	e.adminMu.Lock()
	defer e.adminMu.Unlock()

	snapshots, err := e.filteredSnapshots()
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range snapshots {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}

	e.publish(e.original.Load(), e.opts.GraphPath, false)
	metrics.GraphSwapsTotal.WithLabelValues("reset").Inc()
	slog.Info("Graph reset", "removed_snapshots", len(snapshots)-len(errs))

	if len(errs) > 0 {
		return fmt.Errorf("failed to remove filtered snapshots: %w", errors.Join(errs...))
	}
	return nil
}

// Reload re-reads the canonical file into the original graph. When no filter
// is active the current graph follows.
func (e *Engine) Reload() error {
	e.adminMu.Lock()
	defer e.adminMu.Unlock()

	g, err := graph.Load(e.opts.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to reload graph: %w", err)
	}
	e.original.Store(g)
	metrics.GraphNodes.WithLabelValues("original").Set(float64(g.NodeCount()))
	metrics.GraphEdges.WithLabelValues("original").Set(float64(g.EdgeCount()))

	filtered := e.current.Load().Filtered
	if !filtered {
		e.publish(g, e.opts.GraphPath, false)
	}
	metrics.GraphSwapsTotal.WithLabelValues("reload").Inc()
	slog.Info("Graph reloaded", "path", e.opts.GraphPath, "nodes", g.NodeCount(), "edges", g.EdgeCount(), "filtered", filtered)
	return nil
}

func (e *Engine) onCanonicalChange() {
	if err := e.Reload(); err != nil {
		slog.Error("Background graph reload failed", "error", err)
	}
}

func (e *Engine) publish(g *graph.Graph, path string, filtered bool) {
	e.current.Store(&View{Graph: g, Path: path, Filtered: filtered})
	metrics.GraphNodes.WithLabelValues("current").Set(float64(g.NodeCount()))
	metrics.GraphEdges.WithLabelValues("current").Set(float64(g.EdgeCount()))
}

// filteredSnapshots lists filtered snapshot files, oldest first. Files
// without a generation sort before every generation-numbered one.
func (e *Engine) filteredSnapshots() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(e.opts.SnapshotDir, filteredPrefix+"*"+filteredExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list filtered snapshots: %w", err)
	}
	sortByGeneration(matches)
	return matches, nil
}

func sortByGeneration(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		gi, gj := generationOf(paths[i]), generationOf(paths[j])
		if gi != gj {
			return gi < gj
		}
		return paths[i] < paths[j]
	})
}

func filteredName(gen uint64, minLen, maxLen int) string {
	return fmt.Sprintf("%s%06d_%d_%d%s", filteredPrefix, gen, minLen, maxLen, filteredExt)
}

// generationOf extracts the generation from a
// filtered_graph_<gen>_<min>_<max>.txt name. Any other name yields 0.
func generationOf(path string) uint64 {
	name := strings.TrimPrefix(filepath.Base(path), filteredPrefix)
	name = strings.TrimSuffix(name, filteredExt)
	parts := strings.Split(name, "_")
	if len(parts) != 3 {
		return 0
	}
	gen, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0
	}
	return gen
}
