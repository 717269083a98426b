package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/askdocs/internal/chunker"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// IndexingService runs the ingestion pipeline: split a document into
// parent and child chunks, embed the children, and store everything in
// one durable batch. Chunk IDs are derived from the document ID, so
// re-indexing the same document ID replaces its entries instead of
// duplicating them.
type IndexingService struct {
	splitter *chunker.Splitter
	embedder driven.Embedder
	index    driven.VectorIndex
	docStore driven.DocumentStore
}

// NewIndexingService creates an indexing service.
func NewIndexingService(
	splitter *chunker.Splitter,
	embedder driven.Embedder,
	index driven.VectorIndex,
	docStore driven.DocumentStore,
) *IndexingService {
	return &IndexingService{
		splitter: splitter,
		embedder: embedder,
		index:    index,
		docStore: docStore,
	}
}

// Index chunks, embeds and indexes a document.
func (s *IndexingService) Index(ctx context.Context, doc *domain.Document) (domain.IndexStats, error) {
	logger.Section("Document Indexing")

	if doc == nil {
		return domain.IndexStats{}, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}
	if doc.ID == "" || doc.OwnerID == "" {
		return domain.IndexStats{}, fmt.Errorf("%w: document ID and owner are required", domain.ErrInvalidInput)
	}
	logger.Debug("Indexing document %s (%q) for owner %s", doc.ID, doc.Title, doc.OwnerID)

	parents, children, err := s.splitter.Split(doc)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("split document %s: %w", doc.ID, err)
	}
	logger.Info("Chunked into %d parents, %d children", len(parents), len(children))

	texts := make([]string, len(children))
	for i, child := range children {
		texts[i] = child.Text
	}

	result, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("embed children of %s: %w", doc.ID, err)
	}
	if len(result.Vectors) != len(children) {
		return domain.IndexStats{}, fmt.Errorf(
			"embed children of %s: got %d vectors for %d chunks",
			doc.ID, len(result.Vectors), len(children))
	}
	if result.Degraded {
		logger.Warn("Embedding quota exhausted; some chunks indexed with fallback vectors")
	}

	entries := make([]domain.IndexEntry, len(children))
	for i, child := range children {
		entries[i] = domain.IndexEntry{
			ChildID:    child.ID,
			Embedding:  result.Vectors[i],
			OwnerID:    child.OwnerID,
			DocumentID: child.DocumentID,
			ParentID:   child.ParentID,
		}
	}

	if err := s.index.Upsert(ctx, parents, entries); err != nil {
		return domain.IndexStats{}, fmt.Errorf("index document %s: %w", doc.ID, err)
	}

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return domain.IndexStats{}, fmt.Errorf("save document %s: %w", doc.ID, err)
	}

	stats := domain.IndexStats{
		Parents:  len(parents),
		Children: len(children),
		Degraded: result.Degraded,
	}
	logger.Info("Indexed document %s: %d parents, %d children (degraded=%t)",
		doc.ID, stats.Parents, stats.Children, stats.Degraded)

	return stats, nil
}

// Delete removes a document and all its index entries after verifying
// ownership. A missing document is not an error for the owner that
// would have owned it; callers treat delete as idempotent.
func (s *IndexingService) Delete(ctx context.Context, documentID, ownerID string) error {
	if documentID == "" || ownerID == "" {
		return fmt.Errorf("%w: document ID and owner are required", domain.ErrInvalidInput)
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Delete of unknown document %s is a no-op", documentID)
			return nil
		}
		return fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc.OwnerID != ownerID {
		return fmt.Errorf("%w: document %s", domain.ErrOwnerMismatch, documentID)
	}

	if err := s.index.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete index entries of %s: %w", documentID, err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}
