package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

func testParents() map[string]domain.ParentChunk {
	return map[string]domain.ParentChunk{
		"p1": {ID: "p1", DocumentID: "doc-1", OwnerID: "alice", Text: "parent one", Position: 0},
		"p2": {ID: "p2", DocumentID: "doc-1", OwnerID: "alice", Text: "parent two", Position: 1},
		"p3": {ID: "p3", DocumentID: "doc-2", OwnerID: "alice", Text: "parent three", Position: 0},
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	index := &mockVectorIndex{
		hits: []driven.VectorHit{
			{ChildID: "c1", ParentID: "p1", Score: 0.9},
			{ChildID: "c2", ParentID: "p2", Score: 0.8},
			{ChildID: "c3", ParentID: "p3", Score: 0.7},
		},
		parents: testParents(),
	}
	retriever := NewRetriever(&mockEmbedder{vector: []float32{1, 0}}, index)

	results, degraded, err := retriever.Retrieve(context.Background(), "query", "alice", nil, 5)
	require.NoError(t, err)

	assert.False(t, degraded)
	require.Len(t, results, 3)
	assert.Equal(t, "p1", results[0].Parent.ID)
	assert.Equal(t, 0.9, results[0].Score)
	assert.Equal(t, "p3", results[2].Parent.ID)
}

func TestRetriever_Retrieve_DedupesByParent(t *testing.T) {
	// Two children of the same parent both match; the parent appears
	// once with the better child's score.
	index := &mockVectorIndex{
		hits: []driven.VectorHit{
			{ChildID: "c1", ParentID: "p1", Score: 0.8},
			{ChildID: "c2", ParentID: "p1", Score: 0.9},
			{ChildID: "c3", ParentID: "p2", Score: 0.7},
		},
		parents: testParents(),
	}
	retriever := NewRetriever(&mockEmbedder{vector: []float32{1, 0}}, index)

	results, _, err := retriever.Retrieve(context.Background(), "query", "alice", nil, 5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Parent.ID)
	assert.Equal(t, 0.9, results[0].Score)
	assert.Equal(t, "c2", results[0].ChildID)
}

func TestRetriever_Retrieve_TruncatesToTopK(t *testing.T) {
	index := &mockVectorIndex{
		hits: []driven.VectorHit{
			{ChildID: "c1", ParentID: "p1", Score: 0.9},
			{ChildID: "c2", ParentID: "p2", Score: 0.8},
			{ChildID: "c3", ParentID: "p3", Score: 0.7},
		},
		parents: testParents(),
	}
	retriever := NewRetriever(&mockEmbedder{vector: []float32{1, 0}}, index)

	results, _, err := retriever.Retrieve(context.Background(), "query", "alice", nil, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Parent.ID)
	assert.Equal(t, "p2", results[1].Parent.ID)
}

func TestRetriever_Retrieve_NoMatches(t *testing.T) {
	index := &mockVectorIndex{parents: testParents()}
	retriever := NewRetriever(&mockEmbedder{vector: []float32{1, 0}}, index)

	results, degraded, err := retriever.Retrieve(context.Background(), "query", "alice", nil, 5)
	require.NoError(t, err)

	assert.False(t, degraded)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRetriever_Retrieve_SkipsDeletedParents(t *testing.T) {
	// A hit whose parent vanished between search and resolution is
	// dropped, not an error.
	index := &mockVectorIndex{
		hits: []driven.VectorHit{
			{ChildID: "c1", ParentID: "p1", Score: 0.9},
			{ChildID: "cX", ParentID: "gone", Score: 0.8},
		},
		parents: testParents(),
	}
	retriever := NewRetriever(&mockEmbedder{vector: []float32{1, 0}}, index)

	results, _, err := retriever.Retrieve(context.Background(), "query", "alice", nil, 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].Parent.ID)
}

func TestRetriever_Retrieve_DegradedEmbedding(t *testing.T) {
	index := &mockVectorIndex{
		hits:    []driven.VectorHit{{ChildID: "c1", ParentID: "p1", Score: 0.9}},
		parents: testParents(),
	}
	retriever := NewRetriever(&mockEmbedder{vector: []float32{1, 0}, degraded: true}, index)

	results, degraded, err := retriever.Retrieve(context.Background(), "query", "alice", nil, 5)
	require.NoError(t, err)

	assert.True(t, degraded)
	assert.Len(t, results, 1)
}

func TestRetriever_Retrieve_EmbeddingFails(t *testing.T) {
	embedder := &mockEmbedder{embedErr: domain.ErrEmbeddingProvider}
	retriever := NewRetriever(embedder, &mockVectorIndex{})

	_, _, err := retriever.Retrieve(context.Background(), "query", "alice", nil, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
}

func TestRetriever_Retrieve_SearchFails(t *testing.T) {
	index := &mockVectorIndex{searchErr: errors.New("db locked")}
	retriever := NewRetriever(&mockEmbedder{vector: []float32{1, 0}}, index)

	_, _, err := retriever.Retrieve(context.Background(), "query", "alice", nil, 5)
	require.Error(t, err)
}
