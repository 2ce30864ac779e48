// Package events records one structured event per served request.
//
// Events are grouped in day partitions, <dir>/<YYYYMMDD>/events.json, each
// holding a JSON array. Appending is a locked read-modify-write finished by an
// atomic rename, so concurrent requests never lose each other's records and a
// crash never leaves a half-written partition behind.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sanonone/graphword/pkg/metrics"
	"github.com/sanonone/graphword/pkg/persistence"
)

const (
	partitionLayout = "20060102"
	timestampLayout = "2006-01-02 15:04:05"
	partitionFile   = "events.json"
)

// Event is a single request record.
type Event struct {
	Timestamp      string            `json:"timestamp"`
	RequestID      string            `json:"request_id,omitempty"`
	Endpoint       string            `json:"endpoint"`
	URL            string            `json:"url"`
	Method         string            `json:"method"`
	Params         map[string]string `json:"params"`
	StatusCode     *int              `json:"status_code"`
	ProcessingTime *float64          `json:"processing_time"`
	IPAddress      string            `json:"ip_address"`
	UserAgent      string            `json:"user_agent"`
	AdditionalData map[string]any    `json:"additional_data"`
}

// Options configures a Logger.
type Options struct {
	// Dir is the root of the day partitions.
	Dir string

	// Skip lists endpoints that are never recorded, in addition to /health.
	// Default: DefaultSkip.
	Skip []string

	// Now is the clock used for timestamps and partitioning. Default: time.Now.
	Now func() time.Time
}

// HealthEndpoint is never logged.
const HealthEndpoint = "/health"

// DefaultSkip is the set of endpoints left out of the log by default.
var DefaultSkip = []string{HealthEndpoint, "/metrics"}

// Logger appends events to day partitions.
type Logger struct {
	dir  string
	skip map[string]struct{}
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLogger creates a Logger. The partition directory is created lazily.
func NewLogger(opts Options) *Logger {
	l := &Logger{
		dir:   opts.Dir,
		skip:  make(map[string]struct{}),
		now:   opts.Now,
		locks: make(map[string]*sync.Mutex),
	}
	if l.now == nil {
		l.now = time.Now
	}
	skip := opts.Skip
	if skip == nil {
		skip = DefaultSkip
	}
	l.skip[HealthEndpoint] = struct{}{}
	for _, s := range skip {
		l.skip[s] = struct{}{}
	}
	return l
}

// Skips reports whether events for endpoint are dropped.
func (l *Logger) Skips(endpoint string) bool {
	_, ok := l.skip[endpoint]
	return ok
}

// Log appends ev to today's partition. Timestamp is filled in when empty.
//
// A partition that cannot be decoded is replaced by a partition holding only
// ev; the lost records are reported through slog.
func (l *Logger) Log(ctx context.Context, ev Event) error {
	if l.Skips(ev.Endpoint) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.now()
	if ev.Timestamp == "" {
		ev.Timestamp = now.Format(timestampLayout)
	}
	if ev.Params == nil {
		ev.Params = map[string]string{}
	}
	if ev.AdditionalData == nil {
		ev.AdditionalData = map[string]any{}
	}

	day := now.Format(partitionLayout)
	lock := l.partitionLock(day)
	lock.Lock()
	defer lock.Unlock()

	path := l.partitionPath(day)
	outcome := "ok"
	existing, err := readPartition(path)
	switch {
	case errors.Is(err, errCorrupt):
		slog.Warn("Event log partition is corrupt, starting it over", "path", path, "error", err)
		existing = nil
		outcome = "reset"
	case err != nil:
		metrics.EventLogWritesTotal.WithLabelValues("error").Inc()
		return err
	}

	records := append(existing, ev)
	err = persistence.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(records)
	})
	if err != nil {
		metrics.EventLogWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write event log: %w", err)
	}
	metrics.EventLogWritesTotal.WithLabelValues(outcome).Inc()
	return nil
}

// Read returns the events stored for day. A missing partition is empty.
func (l *Logger) Read(day time.Time) ([]Event, error) {
	key := day.Format(partitionLayout)
	lock := l.partitionLock(key)
	lock.Lock()
	defer lock.Unlock()

	records, err := readPartition(l.partitionPath(key))
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Event{}
	}
	return records, nil
}

func (l *Logger) partitionPath(day string) string {
	return filepath.Join(l.dir, day, partitionFile)
}

func (l *Logger) partitionLock(day string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[day]
	if !ok {
		m = &sync.Mutex{}
		l.locks[day] = m
	}
	return m
}

var errCorrupt = errors.New("corrupt event partition")

func readPartition(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []Event
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	return records, nil
}
