package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// IndexingService ingests documents into the retrieval index.
type IndexingService interface {
	// Index chunks, embeds and indexes a document.
	// Rejects empty documents with domain.ErrEmptyDocument.
	Index(ctx context.Context, doc *domain.Document) (domain.IndexStats, error)

	// Delete removes a document and all its index entries.
	// Returns domain.ErrOwnerMismatch if ownerID does not own it.
	Delete(ctx context.Context, documentID, ownerID string) error
}
