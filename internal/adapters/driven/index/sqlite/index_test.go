package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := New(Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, idx)

	t.Cleanup(func() {
		assert.NoError(t, idx.Close())
	})
	return idx
}

func docBatch(docID, ownerID string, vectors ...[]float32) ([]domain.ParentChunk, []domain.IndexEntry) {
	parent := domain.ParentChunk{
		ID:         docID + ":p0",
		DocumentID: docID,
		OwnerID:    ownerID,
		Text:       "parent text of " + docID,
		Position:   0,
	}

	entries := make([]domain.IndexEntry, len(vectors))
	for i, vec := range vectors {
		entries[i] = domain.IndexEntry{
			ChildID:    fmt.Sprintf("%s:c%d", parent.ID, i),
			Embedding:  vec,
			OwnerID:    ownerID,
			DocumentID: docID,
			ParentID:   parent.ID,
		}
	}
	return []domain.ParentChunk{parent}, entries
}

func TestIndex_UpsertAndSearch(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	parents, entries := docBatch("doc-1", "alice", []float32{1, 0}, []float32{0, 1})
	require.NoError(t, idx.Upsert(ctx, parents, entries))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, driven.SearchFilter{OwnerID: "alice"})
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "doc-1:p0:c0", hits[0].ChildID)
	assert.Equal(t, "doc-1:p0", hits[0].ParentID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestIndex_Search_OwnerIsolation(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	aliceParents, aliceEntries := docBatch("doc-a", "alice", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, aliceParents, aliceEntries))
	bobParents, bobEntries := docBatch("doc-b", "bob", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, bobParents, bobEntries))

	// Identical vectors, but each owner only ever sees their own.
	hits, err := idx.Search(ctx, []float32{1, 0}, 10, driven.SearchFilter{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-a:p0:c0", hits[0].ChildID)

	hits, err = idx.Search(ctx, []float32{1, 0}, 10, driven.SearchFilter{OwnerID: "bob"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-b:p0:c0", hits[0].ChildID)
}

func TestIndex_Search_OwnerRequired(t *testing.T) {
	idx := setupTestIndex(t)

	_, err := idx.Search(context.Background(), []float32{1, 0}, 10, driven.SearchFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_Search_DocumentFilter(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	p1, e1 := docBatch("doc-1", "alice", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, p1, e1))
	p2, e2 := docBatch("doc-2", "alice", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, p2, e2))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, driven.SearchFilter{
		OwnerID:     "alice",
		DocumentIDs: []string{"doc-2"},
	})
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "doc-2:p0:c0", hits[0].ChildID)
}

func TestIndex_Search_TopK(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	parents, entries := docBatch("doc-1", "alice",
		[]float32{1, 0}, []float32{0.9, 0.1}, []float32{0, 1})
	require.NoError(t, idx.Upsert(ctx, parents, entries))

	hits, err := idx.Search(ctx, []float32{1, 0}, 2, driven.SearchFilter{OwnerID: "alice"})
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "doc-1:p0:c0", hits[0].ChildID)
	assert.Equal(t, "doc-1:p0:c1", hits[1].ChildID)
}

func TestIndex_Upsert_ReplacesByChildID(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	parents, entries := docBatch("doc-1", "alice", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, parents, entries))

	// Same IDs, new vector: the entry is replaced, not duplicated.
	entries[0].Embedding = []float32{0, 1}
	require.NoError(t, idx.Upsert(ctx, parents, entries))

	hits, err := idx.Search(ctx, []float32{0, 1}, 10, driven.SearchFilter{OwnerID: "alice"})
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestIndex_Upsert_DimensionMismatch(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	parents, entries := docBatch("doc-1", "alice", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, parents, entries))

	badParents, badEntries := docBatch("doc-2", "alice", []float32{1, 0, 0})
	err := idx.Upsert(ctx, badParents, badEntries)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_GetParent(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	parents, entries := docBatch("doc-1", "alice", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, parents, entries))

	parent, err := idx.GetParent(ctx, "doc-1:p0")
	require.NoError(t, err)
	assert.Equal(t, "parent text of doc-1", parent.Text)

	_, err = idx.GetParent(ctx, "absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndex_DeleteDocument(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	p1, e1 := docBatch("doc-1", "alice", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, p1, e1))
	p2, e2 := docBatch("doc-2", "alice", []float32{0, 1})
	require.NoError(t, idx.Upsert(ctx, p2, e2))

	require.NoError(t, idx.DeleteDocument(ctx, "doc-1"))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, driven.SearchFilter{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-2:p0:c0", hits[0].ChildID)

	_, err = idx.GetParent(ctx, "doc-1:p0")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, idx.DeleteDocument(ctx, "doc-1"))
}

func TestIndex_PersistsAcrossReopen(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()

	idx, err := New(Config{DataDir: dataDir})
	require.NoError(t, err)

	parents, entries := docBatch("doc-1", "alice", []float32{1, 0}, []float32{0, 1})
	require.NoError(t, idx.Upsert(ctx, parents, entries))
	require.NoError(t, idx.Close())

	// Reopen from the snapshot.
	idx, err = New(Config{DataDir: dataDir})
	require.NoError(t, err)
	defer func() { assert.NoError(t, idx.Close()) }()

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, driven.SearchFilter{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-1:p0:c0", hits[0].ChildID)

	parent, err := idx.GetParent(ctx, "doc-1:p0")
	require.NoError(t, err)
	assert.Equal(t, "parent text of doc-1", parent.Text)
}

func TestIndex_DotSimilarity(t *testing.T) {
	idx, err := New(Config{DataDir: t.TempDir(), Similarity: domain.SimilarityDot})
	require.NoError(t, err)
	defer func() { assert.NoError(t, idx.Close()) }()

	ctx := context.Background()
	parents, entries := docBatch("doc-1", "alice", []float32{2, 0}, []float32{0.5, 0})
	require.NoError(t, idx.Upsert(ctx, parents, entries))

	// Dot scoring rewards magnitude; cosine would tie these.
	hits, err := idx.Search(ctx, []float32{1, 0}, 10, driven.SearchFilter{OwnerID: "alice"})
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "doc-1:p0:c0", hits[0].ChildID)
	assert.InDelta(t, 2.0, hits[0].Score, 1e-6)
	assert.InDelta(t, 0.5, hits[1].Score, 1e-6)
}

func TestIndex_InvalidSimilarity(t *testing.T) {
	_, err := New(Config{DataDir: t.TempDir(), Similarity: "euclidean"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
