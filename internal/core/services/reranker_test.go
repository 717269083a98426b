package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func rerankCandidates() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{Parent: domain.ParentChunk{ID: "p1", Text: "alpha"}, Score: 0.9},
		{Parent: domain.ParentChunk{ID: "p2", Text: "beta"}, Score: 0.8},
		{Parent: domain.ParentChunk{ID: "p3", Text: "gamma"}, Score: 0.7},
	}
}

func TestReranker_Rerank_Reorders(t *testing.T) {
	// The scorer disagrees with the similarity ordering.
	scorer := &mockScorer{scores: map[string]float64{
		"alpha": 3,
		"beta":  9,
		"gamma": 6,
	}}
	reranker := NewReranker(scorer, 0)

	results, degraded := reranker.Rerank(context.Background(), "query", rerankCandidates(), 3)

	assert.False(t, degraded)
	require.Len(t, results, 3)
	assert.Equal(t, "p2", results[0].Parent.ID)
	assert.Equal(t, "p3", results[1].Parent.ID)
	assert.Equal(t, "p1", results[2].Parent.ID)
}

func TestReranker_Rerank_TruncatesToTopK(t *testing.T) {
	scorer := &mockScorer{scores: map[string]float64{
		"alpha": 3,
		"beta":  9,
		"gamma": 6,
	}}
	reranker := NewReranker(scorer, 0)

	results, _ := reranker.Rerank(context.Background(), "query", rerankCandidates(), 2)

	require.Len(t, results, 2)
	assert.Equal(t, "p2", results[0].Parent.ID)
	assert.Equal(t, "p3", results[1].Parent.ID)
}

func TestReranker_Rerank_ScoringFailureKeepsOrder(t *testing.T) {
	// A failed second pass must not drop or reorder what retrieval
	// already earned.
	reranker := NewReranker(&mockScorer{scoreErr: errors.New("timeout")}, 0)

	results, degraded := reranker.Rerank(context.Background(), "query", rerankCandidates(), 2)

	assert.True(t, degraded)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Parent.ID)
	assert.Equal(t, "p2", results[1].Parent.ID)
}

func TestReranker_Rerank_NoScorer(t *testing.T) {
	reranker := NewReranker(nil, 0)

	results, degraded := reranker.Rerank(context.Background(), "query", rerankCandidates(), 3)

	assert.True(t, degraded)
	require.Len(t, results, 3)
	assert.Equal(t, "p1", results[0].Parent.ID)
}

func TestReranker_Rerank_TieKeepsOriginalRank(t *testing.T) {
	scorer := &mockScorer{scores: map[string]float64{
		"alpha": 5,
		"beta":  5,
		"gamma": 5,
	}}
	reranker := NewReranker(scorer, 0)

	results, _ := reranker.Rerank(context.Background(), "query", rerankCandidates(), 3)

	require.Len(t, results, 3)
	assert.Equal(t, "p1", results[0].Parent.ID)
	assert.Equal(t, "p2", results[1].Parent.ID)
	assert.Equal(t, "p3", results[2].Parent.ID)
}

func TestReranker_Rerank_Empty(t *testing.T) {
	reranker := NewReranker(&mockScorer{}, 0)

	results, degraded := reranker.Rerank(context.Background(), "query", nil, 5)

	assert.False(t, degraded)
	assert.Empty(t, results)
}
