package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanonone/graphword/pkg/events"
	"github.com/sanonone/graphword/pkg/metrics"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	eventDataKey
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RecoveryMiddleware catches panics, logs the stack trace, and returns a 500 error.
func (s *Server) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("CRITICAL: Panic recovered in HTTP handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", RequestID(r.Context()),
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ErrorResponse{Error: msgInternal})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware accepts the caller's X-Request-ID or assigns a new one.
func (s *Server) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the id assigned by RequestIDMiddleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LoggingMiddleware logs requests and records Prometheus metrics with their duration and status.
func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", duration.String(),
			"ip", r.RemoteAddr,
			"request_id", RequestID(r.Context()),
		)

		// The route pattern keeps label cardinality bounded.
		_, route := s.mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}
		metrics.HttpRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		metrics.HttpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
	})
}

// eventData collects handler-supplied fields for the request's event.
type eventData struct {
	mu   sync.Mutex
	data map[string]any
}

// annotate attaches key=value to the event recorded for r.
func annotate(r *http.Request, key string, value any) {
	ed, ok := r.Context().Value(eventDataKey).(*eventData)
	if !ok {
		return
	}
	ed.mu.Lock()
	ed.data[key] = value
	ed.mu.Unlock()
}

// EventMiddleware writes one event per request to the event log.
func (s *Server) EventMiddleware(next http.Handler) http.Handler {
	if s.Events == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Events.Skips(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ed := &eventData{data: map[string]any{}}
		wrapped := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		// A panicking handler is recorded as a 500 before RecoveryMiddleware answers.
		defer func() {
			p := recover()
			status := wrapped.statusCode
			if p != nil {
				status = http.StatusInternalServerError
				ed.mu.Lock()
				ed.data["error"] = fmt.Sprint(p)
				ed.mu.Unlock()
			}
			s.recordEvent(r, ed, status, time.Since(start))
			if p != nil {
				panic(p)
			}
		}()

		next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), eventDataKey, ed)))
	})
}

func (s *Server) recordEvent(r *http.Request, ed *eventData, status int, took time.Duration) {
	elapsed := took.Seconds()
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	ed.mu.Lock()
	extra := ed.data
	ed.mu.Unlock()

	ev := events.Event{
		RequestID:      RequestID(r.Context()),
		Endpoint:       r.URL.Path,
		URL:            requestURL(r),
		Method:         r.Method,
		Params:         params,
		StatusCode:     &status,
		ProcessingTime: &elapsed,
		IPAddress:      clientIP(r),
		UserAgent:      r.UserAgent(),
		AdditionalData: extra,
	}
	// A request that outlives its client is still recorded.
	if err := s.Events.Log(context.WithoutCancel(r.Context()), ev); err != nil {
		slog.Warn("Failed to record request event", "path", r.URL.Path, "error", err)
	}
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// responseWrapper is a helper to capture the status code.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWrapper) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

// Flush lets streaming handlers (the MCP endpoint) flush through the wrapper.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
