package driven

import "context"

// LLMService provides language model operations for query enhancement,
// relevance scoring and answer generation.
// This is an optional service - when nil, enhancement and reranking are
// skipped and answer generation degrades per stage policy.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o-mini)
//   - Ollama (local models)
//   - Any OpenAI-compatible inference server
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// RelevanceScorer rates how well a passage answers a query.
// Used by the reranker as a second, more expensive relevance pass over
// the similarity-ranked candidates. The default implementation prompts
// the LLMService; tests substitute a deterministic fake.
type RelevanceScorer interface {
	// Score returns a relevance score for the (query, passage) pair.
	// Higher is more relevant.
	Score(ctx context.Context, query, passage string) (float64, error)
}
