// Package embedder provides interfaces for text embedding providers.
//
// It defines the Provider interface that all embedding implementations must
// satisfy, enabling text-to-vector conversion for similarity search. The
// dimensionality of the produced vectors is fixed per model but not known
// a priori; callers discover it at runtime with a canary call rather than
// hardcoding it.
package embedder

import "context"

// Provider defines the interface for embedding providers.
//
// All embedding implementations (Ollama, OpenAI, etc.) must implement this interface.
type Provider interface {
	// Embed converts a text string into a vector embedding.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - text: The input text to embed
	//
	// Returns the embedding vector and any error.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Close closes the provider and releases resources.
	Close() error
}
