package driven

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// EmbeddingProvider generates vector embeddings from text.
// This is the raw provider surface; production code should reach it
// through the gateway adapter, which adds rate limiting and the daily
// quota fallback.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match the index dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// Embedder is the pipeline-facing embedding surface: what indexing and
// retrieval actually consume. The gateway adapter implements it on top of
// an EmbeddingProvider; tests substitute a deterministic fake.
//
// Quota exhaustion never surfaces as an error here. Implementations
// return deterministic fallback vectors marked degraded instead, so a
// provider outage cannot abort an indexing run that could otherwise
// complete. Only non-recoverable transport failures return an error,
// wrapping domain.ErrEmbeddingProvider.
type Embedder interface {
	// Embed embeds a batch of chunk texts.
	Embed(ctx context.Context, texts []string) (domain.EmbedResult, error)

	// EmbedQuery embeds a single query string. The bool reports whether
	// the vector is a degraded quota fallback.
	EmbedQuery(ctx context.Context, text string) ([]float32, bool, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
