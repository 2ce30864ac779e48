package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/graphword/pkg/engine"
	"github.com/sanonone/graphword/pkg/events"
)

const fixture = `cat bat 1.6667
bat cat 0.6000
bat bad 1.5000
bad bat 0.6667
cart card 2.0000
card cart 0.5000
lamp limp 2.0000
limp lamp 0.5000
`

type testEnv struct {
	server *Server
	srv    *httptest.Server
	eng    *engine.Engine
	events *events.Logger
	day    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "datamart_graph", "word_graph.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(graphPath), 0755))
	require.NoError(t, os.WriteFile(graphPath, []byte(fixture), 0644))

	eng, err := engine.Open(engine.DefaultOptions(graphPath))
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	day := time.Date(2024, 11, 23, 10, 0, 0, 0, time.Local)
	evLog := events.NewLogger(events.Options{
		Dir: filepath.Join(dir, "datalake", "events"),
		Now: func() time.Time { return day },
	})

	s := NewServer(eng, evLog, Options{EnableMCP: true})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{server: s, srv: srv, eng: eng, events: evLog, day: day}
}

func (e *testEnv) get(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 1000; i++ {
		resp, err := http.Get(env.srv.URL + "/health")
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "OK", string(body))
	}

	logged, err := env.events.Read(env.day)
	require.NoError(t, err)
	assert.Empty(t, logged)
}

func TestIndexListsRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "/shortest-path")
	assert.Contains(t, string(body), "/reset-graph")
}

func TestShortestPathEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var ok struct {
		Path        []string `json:"path"`
		TotalWeight float64  `json:"total_weight"`
	}
	resp := env.get(t, "/shortest-path?origen=cat&destino=bad", &ok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"cat", "bat", "bad"}, ok.Path)
	assert.InDelta(t, 3.1667, ok.TotalWeight, 1e-9)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	var fail ErrorResponse
	resp = env.get(t, "/shortest-path?origen=cat&destino=dog", &fail)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, msgNodeNotFound, fail.Error)

	resp = env.get(t, "/shortest-path?origen=cat&destino=lamp", &fail)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, msgNoPath, fail.Error)

	resp = env.get(t, "/shortest-path?origen=cat", &fail)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAllPathsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var body AllPathsResponse
	resp := env.get(t, "/all-paths?origen=cat&destino=bad&max_depth=3&max_paths=10", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.WeightedPaths, 1)
	assert.Equal(t, []string{"cat", "bat", "bad"}, body.WeightedPaths[0].Nodes)

	var fail ErrorResponse
	resp = env.get(t, "/all-paths?origen=cat&destino=bad&max_depth=deep", &fail)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fail.Error, "max_depth")

	var none AllPathsResponse
	resp = env.get(t, "/all-paths?origen=cat&destino=bad&max_paths=0", &none)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, none.WeightedPaths)

	resp = env.get(t, "/all-paths?origen=cat&destino=bad&max_depth=0", &none)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, none.WeightedPaths)

	resp = env.get(t, "/all-paths?origen=cat&destino=bad&max_paths=-1", &fail)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fail.Error, "max_paths")

	resp = env.get(t, "/all-paths?origen=cat&destino=nope", &fail)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var empty AllPathsResponse
	resp = env.get(t, "/all-paths?origen=cat&destino=lamp", &empty)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, empty.WeightedPaths)
	assert.Empty(t, empty.WeightedPaths)
}

func TestStructureEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var dist MaximumDistanceResponse
	resp := env.get(t, "/maximum-distance", &dist)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, dist.MaximumDistance)

	var clusters ClustersResponse
	env.get(t, "/clusters", &clusters)
	assert.Equal(t, 3, clusters.TotalClusters)
	assert.Equal(t, []string{"bad", "bat", "cat"}, clusters.Clusters[0])

	var high HighConnectivityResponse
	env.get(t, "/high-connectivity-nodes?min=3", &high)
	assert.Equal(t, []string{"bat"}, high.Nodes)

	var byDegree NodesByDegreeResponse
	env.get(t, "/nodes-by-degree?degree=2", &byDegree)
	assert.Equal(t, []string{"bad", "card", "cart", "cat", "lamp", "limp"}, byDegree.Nodes)

	var isolated IsolatedNodesResponse
	env.get(t, "/isolated-nodes", &isolated)
	assert.NotNil(t, isolated.Nodes)
	assert.Empty(t, isolated.Nodes)
}

func TestNodesByDegreeRequiresDegree(t *testing.T) {
	env := newTestEnv(t)

	var fail ErrorResponse
	resp := env.get(t, "/nodes-by-degree", &fail)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fail.Error, "degree")

	resp = env.get(t, "/nodes-by-degree?degree=two", &fail)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFilterAndResetEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var filtered FilterResponse
	resp := env.get(t, "/filter-graph?min=4&max=4", &filtered)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", filtered.Status)
	assert.Equal(t, 4, filtered.Nodes)
	assert.Equal(t, 4, filtered.Edges)
	assert.FileExists(t, filtered.FilePath)

	var stats StatsResponse
	env.get(t, "/stats", &stats)
	assert.True(t, stats.Filtered)
	assert.Equal(t, filtered.FilePath, stats.ActiveSnapshot)

	var fail ErrorResponse
	resp = env.get(t, "/shortest-path?origen=cat&destino=bat", &fail)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "filtered out nodes are gone")

	resp = env.get(t, "/filter-graph?min=6&max=2", &fail)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var reset StatusResponse
	resp = env.get(t, "/reset-graph", &reset)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, msgReset, reset.Message)
	assert.NoFileExists(t, filtered.FilePath)

	env.get(t, "/stats", &stats)
	assert.False(t, stats.Filtered)
	assert.Equal(t, 7, stats.Nodes)
	assert.Equal(t, 8, stats.Edges)
}

func TestEventsAreRecorded(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/shortest-path?origen=cat&destino=dog", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "graphword-test")
	req.Header.Set(RequestIDHeader, "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	env.get(t, "/clusters", &ClustersResponse{})

	logged, err := env.events.Read(env.day)
	require.NoError(t, err)
	require.Len(t, logged, 2)

	ev := logged[0]
	assert.Equal(t, "/shortest-path", ev.Endpoint)
	assert.Equal(t, "req-42", ev.RequestID)
	assert.Equal(t, "GET", ev.Method)
	assert.Equal(t, "cat", ev.Params["origen"])
	require.NotNil(t, ev.StatusCode)
	assert.Equal(t, http.StatusNotFound, *ev.StatusCode)
	require.NotNil(t, ev.ProcessingTime)
	assert.Equal(t, "graphword-test", ev.UserAgent)
	assert.Equal(t, "127.0.0.1", ev.IPAddress)
	assert.True(t, strings.HasSuffix(ev.URL, "/shortest-path?origen=cat&destino=dog"))
	assert.Contains(t, ev.AdditionalData["error"], "node not found")

	assert.Equal(t, float64(3), logged[1].AdditionalData["total_clusters"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/clusters", &ClustersResponse{})

	resp, err := http.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "graphword_http_requests_total")
	assert.Contains(t, string(body), "graphword_graph_nodes")
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	var fail ErrorResponse
	resp := env.get(t, "/graph", &fail)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, msgNotFound, fail.Error)
}

func TestQueriesDuringFilterSeeConsistentGraphs(t *testing.T) {
	env := newTestEnv(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				resp, err := http.Get(env.srv.URL + "/clusters")
				if !assert.NoError(t, err) {
					return
				}
				var body ClustersResponse
				assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Equal(t, len(body.Clusters), body.TotalClusters)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		env.get(t, "/filter-graph?min=3&max=3", &FilterResponse{})
		env.get(t, "/reset-graph", &StatusResponse{})
	}
	wg.Wait()
}

func TestRecoveryMiddleware(t *testing.T) {
	s := &Server{}
	h := s.RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clusters", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var fail ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fail))
	assert.Equal(t, msgInternal, fail.Error)
}

func TestPanickingHandlerIsRecorded(t *testing.T) {
	env := newTestEnv(t)
	env.server.mux.HandleFunc("GET /explode", func(w http.ResponseWriter, r *http.Request) {
		panic("index out of range")
	})

	var fail ErrorResponse
	resp := env.get(t, "/explode?k=v", &fail)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, msgInternal, fail.Error)

	logged, err := env.events.Read(env.day)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.NotNil(t, logged[0].StatusCode)
	assert.Equal(t, http.StatusInternalServerError, *logged[0].StatusCode)
	assert.Equal(t, "index out of range", logged[0].AdditionalData["error"])
	assert.Equal(t, "v", logged[0].Params["k"])
}
