package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// childMultiplier is how many child hits are fetched per requested
// parent. A parent can be reached via several of its children, so the
// raw hit list over-fetches before parent deduplication.
const childMultiplier = 3

// Retriever executes filtered similarity search and resolves child hits
// to their parent chunks.
type Retriever struct {
	embedder driven.Embedder
	index    driven.VectorIndex
}

// NewRetriever creates a retriever.
func NewRetriever(embedder driven.Embedder, index driven.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the (possibly enhanced) query, searches the index
// restricted to ownerID and the optional document filter, and returns
// parent-level results. The bool reports whether the query embedding
// was a degraded quota fallback.
//
// Zero candidates is a normal outcome and returns an empty, non-nil
// slice; only embedding transport loss or index unavailability error.
func (r *Retriever) Retrieve(
	ctx context.Context, query, ownerID string, documentIDs []string, topK int,
) ([]domain.RetrievalResult, bool, error) {
	if topK <= 0 {
		topK = 5
	}

	vector, degraded, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, vector, topK*childMultiplier, driven.SearchFilter{
		OwnerID:     ownerID,
		DocumentIDs: documentIDs,
	})
	if err != nil {
		return nil, degraded, fmt.Errorf("index search: %w", err)
	}

	logger.Debug("Retrieve: %d child hits for owner %s", len(hits), ownerID)

	// Dedupe by parent, keeping the best-scoring child per parent.
	best := make(map[string]driven.VectorHit, len(hits))
	for _, hit := range hits {
		if prev, ok := best[hit.ParentID]; !ok || hit.Score > prev.Score {
			best[hit.ParentID] = hit
		}
	}

	results := make([]domain.RetrievalResult, 0, len(best))
	for parentID, hit := range best {
		parent, err := r.index.GetParent(ctx, parentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Parent deleted between search and resolution, skip it.
				continue
			}
			return nil, degraded, fmt.Errorf("get parent %s: %w", parentID, err)
		}
		results = append(results, domain.RetrievalResult{
			Parent:  *parent,
			Score:   hit.Score,
			ChildID: hit.ChildID,
		})
	}

	// Score descending; equal scores order by parent position so the
	// ranking is stable and deterministic.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Parent.Position < results[j].Parent.Position
	})

	if len(results) > topK {
		results = results[:topK]
	}

	logger.Debug("Retrieve: %d parents after dedupe", len(results))
	return results, degraded, nil
}
