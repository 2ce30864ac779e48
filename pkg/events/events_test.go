package events

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/graphword/pkg/metrics"
)

var fixedDay = time.Date(2024, 11, 23, 14, 5, 9, 0, time.Local)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	dir := t.TempDir()
	return NewLogger(Options{Dir: dir, Now: func() time.Time { return fixedDay }}), dir
}

func intPtr(v int) *int { return &v }

func TestLogAppendsToDayPartition(t *testing.T) {
	l, dir := newTestLogger(t)
	ctx := context.Background()

	require.NoError(t, l.Log(ctx, Event{Endpoint: "/shortest-path", Method: "GET", StatusCode: intPtr(200), Params: map[string]string{"origen": "cat"}}))
	require.NoError(t, l.Log(ctx, Event{Endpoint: "/clusters", Method: "GET", StatusCode: intPtr(500), AdditionalData: map[string]any{"error": "boom"}}))

	_, err := os.Stat(filepath.Join(dir, "20241123", "events.json"))
	require.NoError(t, err)

	got, err := l.Read(fixedDay)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-11-23 14:05:09", got[0].Timestamp)
	assert.Equal(t, "cat", got[0].Params["origen"])
	assert.Equal(t, 200, *got[0].StatusCode)
	assert.Nil(t, got[0].ProcessingTime)
	assert.Equal(t, "boom", got[1].AdditionalData["error"])
}

func TestHealthChecksAreNeverLogged(t *testing.T) {
	l, dir := newTestLogger(t)
	for i := 0; i < 1000; i++ {
		require.NoError(t, l.Log(context.Background(), Event{Endpoint: "/health"}))
	}
	require.NoError(t, l.Log(context.Background(), Event{Endpoint: "/metrics"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCorruptPartitionIsStartedOver(t *testing.T) {
	l, dir := newTestLogger(t)
	path := filepath.Join(dir, "20241123", "events.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`[{"endpoint": "/clu`), 0644))

	resets := metrics.EventLogWritesTotal.WithLabelValues("reset")
	before := testutil.ToFloat64(resets)
	require.NoError(t, l.Log(context.Background(), Event{Endpoint: "/isolated-nodes"}))
	assert.Equal(t, before+1, testutil.ToFloat64(resets))

	got, err := l.Read(fixedDay)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/isolated-nodes", got[0].Endpoint)
}

func TestConcurrentWritersLoseNothing(t *testing.T) {
	l, _ := newTestLogger(t)

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				err := l.Log(context.Background(), Event{Endpoint: "/all-paths", RequestID: fmt.Sprintf("%d-%d", w, i)})
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	got, err := l.Read(fixedDay)
	require.NoError(t, err)
	require.Len(t, got, writers*perWriter)

	ids := map[string]bool{}
	for _, ev := range got {
		ids[ev.RequestID] = true
	}
	assert.Len(t, ids, writers*perWriter)
}

func TestPartitionFollowsClock(t *testing.T) {
	dir := t.TempDir()
	now := fixedDay
	l := NewLogger(Options{Dir: dir, Now: func() time.Time { return now }})

	require.NoError(t, l.Log(context.Background(), Event{Endpoint: "/clusters"}))
	now = now.Add(24 * time.Hour)
	require.NoError(t, l.Log(context.Background(), Event{Endpoint: "/clusters"}))

	first, err := l.Read(fixedDay)
	require.NoError(t, err)
	second, err := l.Read(now)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
}

func TestReadMissingPartition(t *testing.T) {
	l, _ := newTestLogger(t)
	got, err := l.Read(fixedDay)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCustomSkipList(t *testing.T) {
	l := NewLogger(Options{Dir: t.TempDir(), Skip: []string{"/stats"}})
	assert.True(t, l.Skips("/stats"))
	assert.True(t, l.Skips("/health"))
	assert.False(t, l.Skips("/metrics"))
}
