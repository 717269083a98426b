package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDocument indicates a document with no usable text.
	// Indexing rejects such documents at the chunking stage.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrEmbeddingProvider indicates a non-recoverable transport failure
	// of the embedding provider. Fatal for the indexing run or query
	// that hit it; quota exhaustion is NOT this error, it degrades to a
	// fallback embedding instead.
	ErrEmbeddingProvider = errors.New("embedding provider failure")

	// ErrGenerationTimeout indicates the generation provider failed or
	// timed out. Non-fatal at the enhancement and reranking stages,
	// fatal at the final answer stage.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrIndexUnavailable indicates the vector index cannot be reached
	// or its snapshot cannot be written. Always fatal.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrOwnerMismatch indicates an operation referenced a document
	// owned by a different user.
	ErrOwnerMismatch = errors.New("document owned by another user")
)
