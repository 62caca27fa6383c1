// Package qdrant provides a Qdrant vector store backend over its HTTP API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lifelog-io/lifelog-go/pkg/vectorindex"
)

// Client implements vectorindex.Store against a Qdrant instance.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// Config is the configuration for the Qdrant client.
// BaseURL: Qdrant HTTP address, defaults to "http://localhost:6333"
// APIKey: Optional api-key header value
// HTTPClient: Custom HTTP client, if nil uses a default with 30 seconds timeout
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new Qdrant client.
func NewClient(cfg *Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// CollectionInfo reports the declared vector size of the collection.
func (c *Client) CollectionInfo(ctx context.Context, name string) (int, bool, error) {
	resp, err := c.do(ctx, "GET", fmt.Sprintf("/collections/%s", name), nil)
	if err != nil {
		return 0, false, fmt.Errorf("CollectionInfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return 0, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, false, fmt.Errorf("CollectionInfo: status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, false, fmt.Errorf("CollectionInfo: decode response: %w", err)
	}

	return response.Result.Config.Params.Vectors.Size, true, nil
}

// CreateCollection creates the collection with cosine distance.
func (c *Client) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	reqBody := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	resp, err := c.do(ctx, "PUT", fmt.Sprintf("/collections/%s", name), reqBody)
	if err != nil {
		return fmt.Errorf("CreateCollection: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("CreateCollection: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Upsert inserts or replaces the point with its id.
func (c *Client) Upsert(ctx context.Context, collection string, point *vectorindex.Point) error {
	reqBody := map[string]interface{}{
		"points": []map[string]interface{}{
			{
				"id":      point.ID,
				"vector":  point.Vector,
				"payload": point.Payload,
			},
		},
	}

	resp, err := c.do(ctx, "PUT", fmt.Sprintf("/collections/%s/points", collection), reqBody)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Upsert: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Search returns the limit nearest points by cosine similarity.
func (c *Client) Search(ctx context.Context, collection string, vector []float64, limit int) ([]*vectorindex.ScoredPoint, error) {
	reqBody := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	resp, err := c.do(ctx, "POST", fmt.Sprintf("/collections/%s/points/search", collection), reqBody)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Search: status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Result []struct {
			ID      uint64                 `json:"id"`
			Score   float64                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("Search: decode response: %w", err)
	}

	points := make([]*vectorindex.ScoredPoint, len(response.Result))
	for i, r := range response.Result {
		points[i] = &vectorindex.ScoredPoint{
			ID:      r.ID,
			Score:   r.Score,
			Payload: r.Payload,
		}
	}
	return points, nil
}

// Close closes the client connection.
// HTTP client does not require explicit closing; this method is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}
