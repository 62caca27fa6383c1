// Package ollama provides an Ollama embedding client.
//
// Ollama runs embedding models locally; generation can be slow on
// resource-constrained hosts, so the default HTTP timeout is generous.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an Ollama embedding client.
// It implements the embedder.Provider interface using the Ollama
// /api/embeddings endpoint.
type Client struct {
	client  *http.Client
	model   string
	baseURL string
}

// Config is the configuration for the Ollama embedder.
// Model: Embedding model name, defaults to "nomic-embed-text"
// BaseURL: Ollama service address, defaults to "http://localhost:11434"
// HTTPClient: Custom HTTP client, if nil uses a default with 60 seconds timeout
type Config struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new Ollama embedding client.
func NewClient(cfg *Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text"
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: 60 * time.Second,
		}
	}

	return &Client{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Embed converts a single text to a vector.
//
// Returns an error when the model does not support embeddings (empty
// vector in the response); fallback policy is the caller's decision.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := map[string]interface{}{
		"model":  c.model,
		"prompt": text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embeddings", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(response.Embedding) == 0 {
		return nil, errors.New("embedding generation failed: empty embedding from Ollama API")
	}

	return response.Embedding, nil
}

// Close closes the client connection.
// HTTP client does not require explicit closing; this method is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
