package graph

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sanonone/graphword/pkg/persistence"
)

// Load reads an edge-list file into a new Graph.
//
// If the file does not exist it is created empty (together with its parent
// directory) and an empty graph is returned: the service starts degraded
// but available. Malformed lines are skipped.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create graph directory: %w", err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return nil, fmt.Errorf("failed to create empty graph file: %w", err)
		}
		slog.Warn("Graph file not found, created empty file", "path", path)
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()

	g, skipped, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph from %s: %w", path, err)
	}
	if skipped > 0 {
		slog.Warn("Skipped malformed edge-list lines", "path", path, "lines", skipped)
	}
	return g, nil
}

// Read parses an edge list from r. It returns the number of skipped lines.
func Read(r io.Reader) (*Graph, int, error) {
	records, skipped, err := persistence.ReadEdgeList(r)
	if err != nil {
		return nil, skipped, err
	}

	b := NewBuilder()
	for _, rec := range records {
		if !b.AddEdge(rec.Source, rec.Target, rec.Weight) {
			skipped++
		}
	}
	return b.Freeze(), skipped, nil
}

// Snapshot overwrites path with the edges of g, creating parent directories
// as needed. The file is replaced atomically.
func Snapshot(g *Graph, path string) error {
	return WriteEdges(path, g.Edges())
}

// WriteEdges writes an edge list to path atomically.
func WriteEdges(path string, edges []Edge) error {
	records := make([]persistence.EdgeRecord, len(edges))
	for i, e := range edges {
		records[i] = persistence.EdgeRecord{Source: e.Source, Target: e.Target, Weight: e.Weight}
	}
	return persistence.WriteFileAtomic(path, func(w io.Writer) error {
		return persistence.WriteEdgeList(w, records)
	})
}
