// Package server exposes the word graph over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/graphword/internal/mcp"
	"github.com/sanonone/graphword/pkg/engine"
	"github.com/sanonone/graphword/pkg/events"
)

// Options configures the HTTP listener.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// EnableMCP mounts the MCP streamable HTTP endpoint on /mcp.
	EnableMCP bool
}

// Server holds the HTTP interface and the graph Engine it serves.
type Server struct {
	Engine *engine.Engine

	// Events records one event per request. Nil disables the event log.
	Events *events.Logger

	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer wires routes and middlewares around an opened Engine.
func NewServer(eng *engine.Engine, evLog *events.Logger, opts Options) *Server {
	s := &Server{
		Engine: eng,
		Events: evLog,
	}

	mux := http.NewServeMux()
	s.mux = mux
	s.registerHTTPHandlers(mux)

	if opts.EnableMCP {
		mux.Handle("/mcp", mcp.NewHTTPHandler(eng))
	}

	// Chain middlewares: Recovery -> RequestID -> Logging -> Events -> Mux
	// Recovery must be outer-most to catch everything.
	var handler http.Handler = mux
	handler = s.EventMiddleware(handler)
	handler = s.LoggingMiddleware(handler)
	handler = s.RequestIDMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /health", s.handleHealth)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      rootMux,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits up to 5 seconds for in-flight
// ones. It does NOT close the Engine.
func (s *Server) Shutdown() {
	slog.Info("Starting graceful shutdown of HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
