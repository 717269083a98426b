package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestStore_SaveAndGetDocument(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	doc := &domain.Document{
		ID:        "doc-1",
		OwnerID:   "alice",
		Title:     "Quarterly Report",
		Content:   "full document text",
		CreatedAt: now,
	}

	require.NoError(t, store.SaveDocument(ctx, doc))

	retrieved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)

	assert.Equal(t, doc.ID, retrieved.ID)
	assert.Equal(t, doc.OwnerID, retrieved.OwnerID)
	assert.Equal(t, doc.Title, retrieved.Title)
	assert.WithinDuration(t, doc.CreatedAt, retrieved.CreatedAt, time.Second)
}

func TestStore_GetDocument_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetDocument(context.Background(), "absent")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveDocument_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", OwnerID: "alice", Title: "Draft"}
	require.NoError(t, store.SaveDocument(ctx, doc))

	doc.Title = "Final"
	require.NoError(t, store.SaveDocument(ctx, doc))

	retrieved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Final", retrieved.Title)

	docs, err := store.ListDocuments(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestStore_ListDocuments_FiltersByOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "a1", OwnerID: "alice", Title: "A"}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "a2", OwnerID: "alice", Title: "B"}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "b1", OwnerID: "bob", Title: "C"}))

	docs, err := store.ListDocuments(ctx, "alice")
	require.NoError(t, err)

	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, "alice", doc.OwnerID)
	}
}

func TestStore_ListDocuments_Empty(t *testing.T) {
	store := setupTestStore(t)

	docs, err := store.ListDocuments(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_DeleteDocument(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", OwnerID: "alice"}))
	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting a missing document is a no-op.
	assert.NoError(t, store.DeleteDocument(ctx, "doc-1"))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dataDir)
	require.NoError(t, err)
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", OwnerID: "alice", Title: "Kept"}))
	require.NoError(t, store.Close())

	store, err = NewStore(dataDir)
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close()) }()

	retrieved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Kept", retrieved.Title)
}
