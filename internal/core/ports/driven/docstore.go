package driven

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// DocumentStore persists document metadata (owner, title, timestamps).
// Chunk and embedding storage belongs to the VectorIndex, not here.
type DocumentStore interface {
	// SaveDocument stores a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if absent.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents for an owner.
	ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error)

	// DeleteDocument removes a document record.
	DeleteDocument(ctx context.Context, id string) error
}
