package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sanonone/graphword/internal/server/ui"
	"github.com/sanonone/graphword/pkg/engine"
	"github.com/sanonone/graphword/pkg/query"
)

// ErrBadRequest marks a missing or malformed request parameter.
var ErrBadRequest = errors.New("bad request")

func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /shortest-path", s.handleShortestPath)
	mux.HandleFunc("GET /all-paths", s.handleAllPaths)
	mux.HandleFunc("GET /maximum-distance", s.handleMaximumDistance)
	mux.HandleFunc("GET /clusters", s.handleClusters)
	mux.HandleFunc("GET /high-connectivity-nodes", s.handleHighConnectivity)
	mux.HandleFunc("GET /nodes-by-degree", s.handleNodesByDegree)
	mux.HandleFunc("GET /isolated-nodes", s.handleIsolatedNodes)
	mux.HandleFunc("GET /filter-graph", s.handleFilterGraph)
	mux.HandleFunc("GET /reset-graph", s.handleResetGraph)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.writeHTTPError(w, http.StatusNotFound, msgNotFound)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := ui.RenderIndex(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	from, to, err := endpoints(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := query.ShortestPath(s.Engine.Current(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	annotate(r, "path", p.Nodes)
	annotate(r, "total_weight", p.TotalWeight)
	s.writeHTTPResponse(w, http.StatusOK, p)
}

func (s *Server) handleAllPaths(w http.ResponseWriter, r *http.Request) {
	from, to, err := endpoints(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	maxDepth, err := boundParam(r, "max_depth", query.DefaultMaxDepth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	maxPaths, err := boundParam(r, "max_paths", query.DefaultMaxPaths)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	paths, err := query.AllPaths(r.Context(), s.Engine.Current(), from, to, query.AllPathsOptions{
		MaxDepth: maxDepth,
		MaxPaths: maxPaths,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	annotate(r, "paths_found", len(paths))
	s.writeHTTPResponse(w, http.StatusOK, AllPathsResponse{WeightedPaths: paths})
}

func (s *Server) handleMaximumDistance(w http.ResponseWriter, r *http.Request) {
	d, err := query.MaximumDistance(r.Context(), s.Engine.Current())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	annotate(r, "maximum_distance", d)
	s.writeHTTPResponse(w, http.StatusOK, MaximumDistanceResponse{MaximumDistance: d})
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	clusters := query.Clusters(s.Engine.Current())
	annotate(r, "total_clusters", len(clusters))
	s.writeHTTPResponse(w, http.StatusOK, ClustersResponse{Clusters: clusters, TotalClusters: len(clusters)})
}

func (s *Server) handleHighConnectivity(w http.ResponseWriter, r *http.Request) {
	minDegree, err := intParam(r, "min", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	nodes := query.HighConnectivityNodes(s.Engine.Current(), minDegree)
	annotate(r, "nodes_found", len(nodes))
	s.writeHTTPResponse(w, http.StatusOK, HighConnectivityResponse{Nodes: nodes})
}

func (s *Server) handleNodesByDegree(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("degree") == "" {
		s.writeError(w, r, fmt.Errorf("%w: missing parameter 'degree'", ErrBadRequest))
		return
	}
	degree, err := intParam(r, "degree", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	nodes := query.NodesByDegree(s.Engine.Current(), degree)
	annotate(r, "nodes_found", len(nodes))
	s.writeHTTPResponse(w, http.StatusOK, NodesByDegreeResponse{Nodes: nodes})
}

func (s *Server) handleIsolatedNodes(w http.ResponseWriter, r *http.Request) {
	nodes := query.IsolatedNodes(s.Engine.Current())
	annotate(r, "nodes_found", len(nodes))
	s.writeHTTPResponse(w, http.StatusOK, IsolatedNodesResponse{Nodes: nodes})
}

func (s *Server) handleFilterGraph(w http.ResponseWriter, r *http.Request) {
	minLen, err := intParam(r, "min", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	maxLen, err := intParam(r, "max", 10)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.Engine.Filter(minLen, maxLen)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	annotate(r, "file_path", res.Path)
	s.writeHTTPResponse(w, http.StatusOK, FilterResponse{
		Status:   statusSuccess,
		Message:  fmt.Sprintf("Grafo filtrado y guardado como %s con palabras de longitud entre %d y %d", res.Path, minLen, maxLen),
		Nodes:    res.Nodes,
		Edges:    res.Edges,
		FilePath: res.Path,
	})
}

func (s *Server) handleResetGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Reset(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: statusSuccess, Message: msgReset})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	v := s.Engine.View()
	s.writeHTTPResponse(w, http.StatusOK, StatsResponse{
		Nodes:          v.Graph.NodeCount(),
		Edges:          v.Graph.EdgeCount(),
		ActiveSnapshot: v.Path,
		Filtered:       v.Filtered,
	})
}

// endpoints reads the origen/destino pair shared by the path queries.
func endpoints(r *http.Request) (string, string, error) {
	q := r.URL.Query()
	from, to := q.Get("origen"), q.Get("destino")
	if from == "" || to == "" {
		return "", "", fmt.Errorf("%w: parameters 'origen' and 'destino' are required", ErrBadRequest)
	}
	return from, to, nil
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parameter '%s' must be an integer, got %q", ErrBadRequest, name, raw)
	}
	return v, nil
}

// boundParam is intParam restricted to values >= 0.
func boundParam(r *http.Request, name string, def int) (int, error) {
	v, err := intParam(r, name, def)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: parameter '%s' must not be negative, got %d", ErrBadRequest, name, v)
	}
	return v, nil
}

// writeError maps err to a status and a client-safe message. The full error
// only reaches the request's event and the server log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, msgInternal
	switch {
	case errors.Is(err, query.ErrNodeNotFound):
		status, message = http.StatusNotFound, msgNodeNotFound
	case errors.Is(err, query.ErrNoPath):
		status, message = http.StatusNotFound, msgNoPath
	case errors.Is(err, ErrBadRequest), errors.Is(err, engine.ErrInvalidBounds), errors.Is(err, query.ErrNegativeBound):
		status, message = http.StatusBadRequest, err.Error()
	}

	annotate(r, "error", err.Error())
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
	}
	s.writeHTTPError(w, status, message)
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, ErrorResponse{Error: message})
}
