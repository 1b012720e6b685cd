package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, semantic chunking and
// semantic scoring are disabled and the engine degrades to its
// lexical signals.
//
// Implementations must map transport failures (timeout, connection
// refused, non-2xx) to domain.ErrGatewayUnavailable so callers can
// recover uniformly instead of inventing per-call-site placeholders.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm) on a local model server
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to decide whether semantic features
	// are enabled.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
