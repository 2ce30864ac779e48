// Package client provides a Go client for the graphword HTTP API.
//
// It covers every query endpoint (paths, clusters, degree filters) and the
// administrative filter/reset operations. Failed requests surface as *APIError
// carrying the HTTP status and the server's error message.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sanonone/graphword/pkg/query"
)

// --- Custom Errors ---

// APIError represents an error returned by the graphword API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API (unknown word or no path).
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// --- JSON Response Structs ---

// Clusters models the response of GET /clusters.
type Clusters struct {
	Clusters      [][]string `json:"clusters"`
	TotalClusters int        `json:"total_clusters"`
}

// FilterResult models the response of GET /filter-graph.
type FilterResult struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Nodes    int    `json:"nodes_count"`
	Edges    int    `json:"edges_count"`
	FilePath string `json:"file_path"`
}

// Stats models the response of GET /stats.
type Stats struct {
	Nodes          int    `json:"nodes_count"`
	Edges          int    `json:"edges_count"`
	ActiveSnapshot string `json:"active_snapshot"`
	Filtered       bool   `json:"filtered"`
}

// Client is the Go client for interacting with graphword.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at host:port.
func New(host string, port int) *Client {
	return NewWithURL(fmt.Sprintf("http://%s:%d", host, port))
}

// NewWithURL creates a client for a full base URL such as "http://graph.local:8080".
func NewWithURL(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// getJSON executes a GET request and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}

// --- Queries ---

// ShortestPath returns the minimum-weight path between two words.
func (c *Client) ShortestPath(ctx context.Context, from, to string) (query.Path, error) {
	var p query.Path
	err := c.getJSON(ctx, "/shortest-path", url.Values{"origen": {from}, "destino": {to}}, &p)
	return p, err
}

// AllPaths returns bounded simple paths between two words.
// Pass query.DefaultAllPathsOptions() for the server defaults.
func (c *Client) AllPaths(ctx context.Context, from, to string, opts query.AllPathsOptions) ([]query.Path, error) {
	params := url.Values{
		"origen":    {from},
		"destino":   {to},
		"max_depth": {strconv.Itoa(opts.MaxDepth)},
		"max_paths": {strconv.Itoa(opts.MaxPaths)},
	}
	var resp struct {
		WeightedPaths []query.Path `json:"weighted_paths"`
	}
	err := c.getJSON(ctx, "/all-paths", params, &resp)
	return resp.WeightedPaths, err
}

// MaximumDistance returns the largest hop distance in the served graph.
func (c *Client) MaximumDistance(ctx context.Context) (int, error) {
	var resp struct {
		MaximumDistance int `json:"maximum_distance"`
	}
	err := c.getJSON(ctx, "/maximum-distance", nil, &resp)
	return resp.MaximumDistance, err
}

// Clusters returns the weakly connected components.
func (c *Client) Clusters(ctx context.Context) (*Clusters, error) {
	var resp Clusters
	if err := c.getJSON(ctx, "/clusters", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HighConnectivityNodes returns words with total degree >= minDegree.
func (c *Client) HighConnectivityNodes(ctx context.Context, minDegree int) ([]string, error) {
	var resp struct {
		Nodes []string `json:"high_connectivity_nodes"`
	}
	err := c.getJSON(ctx, "/high-connectivity-nodes", url.Values{"min": {strconv.Itoa(minDegree)}}, &resp)
	return resp.Nodes, err
}

// NodesByDegree returns words whose total degree equals degree.
func (c *Client) NodesByDegree(ctx context.Context, degree int) ([]string, error) {
	var resp struct {
		Nodes []string `json:"nodes"`
	}
	err := c.getJSON(ctx, "/nodes-by-degree", url.Values{"degree": {strconv.Itoa(degree)}}, &resp)
	return resp.Nodes, err
}

// IsolatedNodes returns words without edges.
func (c *Client) IsolatedNodes(ctx context.Context) ([]string, error) {
	var resp struct {
		Nodes []string `json:"isolated_nodes"`
	}
	err := c.getJSON(ctx, "/isolated-nodes", nil, &resp)
	return resp.Nodes, err
}

// Stats returns the size of the served graph and the file backing it.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var resp Stats
	if err := c.getJSON(ctx, "/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Administration ---

// FilterGraph restricts the served graph to words with length in [minLen, maxLen].
func (c *Client) FilterGraph(ctx context.Context, minLen, maxLen int) (*FilterResult, error) {
	var resp FilterResult
	params := url.Values{"min": {strconv.Itoa(minLen)}, "max": {strconv.Itoa(maxLen)}}
	if err := c.getJSON(ctx, "/filter-graph", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetGraph restores the original graph and deletes filtered snapshots.
func (c *Client) ResetGraph(ctx context.Context) error {
	var resp map[string]string
	return c.getJSON(ctx, "/reset-graph", nil, &resp)
}

// Health returns nil when the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	body, err := c.get(ctx, "/health", nil)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(body)) != "OK" {
		return fmt.Errorf("unexpected health response: %q", body)
	}
	return nil
}
