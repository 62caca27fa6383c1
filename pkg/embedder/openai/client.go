// Package openai provides an OpenAI embedding client.
package openai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Client is an OpenAI embedding client.
// It implements the embedder.Provider interface based on the OpenAI
// Embeddings API.
type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// Config is the configuration for the OpenAI embedder.
// APIKey: OpenAI API key (required)
// Model: Embedding model name, defaults to text-embedding-3-small
// BaseURL: API base URL, defaults to the OpenAI official address
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a new OpenAI embedding client.
func NewClient(cfg *Config) (*Client, error) {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := openai.EmbeddingModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.SmallEmbedding3
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Embed converts a single text to a vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("embedding generation failed: no data returned from OpenAI API")
	}

	// Convert float32 to float64
	embedding32 := resp.Data[0].Embedding
	embedding64 := make([]float64, len(embedding32))
	for i, v := range embedding32 {
		embedding64[i] = float64(v)
	}

	return embedding64, nil
}

// Close closes the client connection.
// The OpenAI SDK client does not require explicit closing; this method is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
