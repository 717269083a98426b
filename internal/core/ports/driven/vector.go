package driven

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// SearchFilter is a hard constraint applied alongside similarity scoring,
// never as a post-filter on an unfiltered top-k.
type SearchFilter struct {
	// OwnerID restricts results to one tenant. Required.
	OwnerID string

	// DocumentIDs optionally restricts results to specific documents.
	DocumentIDs []string
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ChildID is the matched child chunk.
	ChildID string

	// ParentID is the matched child's enclosing parent.
	ParentID string

	// Score is the similarity score (higher is closer).
	Score float64
}

// VectorIndex stores child-chunk embeddings together with the parent
// chunk store, and provides filtered similarity search.
//
// The index exclusively owns IndexEntry storage and parent chunk
// persistence. Upserts and deletes for a single document are atomic with
// respect to concurrent searches: a search sees all or none of a batch.
// The full index is durably flushed after every batch; on startup it is
// rebuilt from the last durable snapshot.
type VectorIndex interface {
	// Upsert adds one document's parents and index entries as a single
	// durable batch. ChildID is the upsert key; re-upsert replaces.
	Upsert(ctx context.Context, parents []domain.ParentChunk, entries []domain.IndexEntry) error

	// Search returns at most topK entries matching the filter, ranked by
	// descending similarity.
	Search(ctx context.Context, query []float32, topK int, filter SearchFilter) ([]VectorHit, error)

	// GetParent retrieves a parent chunk by ID.
	// Returns domain.ErrNotFound if absent.
	GetParent(ctx context.Context, parentID string) (*domain.ParentChunk, error)

	// DeleteDocument removes all entries and parent chunks for the
	// document, atomically with respect to concurrent searches.
	DeleteDocument(ctx context.Context, documentID string) error

	// Close flushes and releases resources.
	Close() error
}
