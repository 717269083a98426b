package domain

// EmbedResult is the outcome of a batch embedding call.
type EmbedResult struct {
	// Vectors are the embeddings, one per input text, in input order.
	Vectors [][]float32

	// Degraded is true if any vector is a deterministic quota fallback
	// rather than a real provider embedding.
	Degraded bool
}

// Similarity selects the scoring function of the vector index.
// It is configurable but fixed per deployment.
type Similarity string

// Supported similarity measures.
const (
	// SimilarityCosine scores by cosine similarity.
	SimilarityCosine Similarity = "cosine"

	// SimilarityDot scores by inner product.
	SimilarityDot Similarity = "dot"
)

// IsValid returns true if the similarity measure is recognised.
func (s Similarity) IsValid() bool {
	return s == SimilarityCosine || s == SimilarityDot
}
