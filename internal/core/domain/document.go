package domain

import "time"

// Document represents an uploaded document after text extraction.
// Documents are immutable once indexed; re-indexing the same content
// creates a new document with a fresh ID.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OwnerID is the tenancy key. All retrieval is filtered by owner.
	OwnerID string

	// Title is the human-readable title.
	Title string

	// Content is the full plain text after extraction.
	Content string

	// CreatedAt is when the document was indexed.
	CreatedAt time.Time
}

// ParentChunk is a large contiguous span of a document (~1000 characters).
// Parents are never embedded; they are returned to the generator so the
// answer is grounded in more context than the matched child.
type ParentChunk struct {
	// ID is the unique identifier for the parent chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// OwnerID mirrors the document owner for filtering.
	OwnerID string

	// Text is the parent's span of the document text.
	Text string

	// Position is the ordinal position within the document.
	Position int
}

// ChildChunk is a small span carved from a parent (~300 characters with
// ~100 characters of overlap). Children are the unit of embedding and
// similarity search; each child belongs to exactly one parent.
type ChildChunk struct {
	// ID is the unique identifier for the child chunk.
	ID string

	// ParentID links to the enclosing ParentChunk.
	ParentID string

	// DocumentID links to the owning Document.
	DocumentID string

	// OwnerID mirrors the document owner for filtering.
	OwnerID string

	// Text is the child's span of the parent text.
	Text string

	// Position is the ordinal position within the parent.
	Position int
}

// IndexEntry is the unit stored in the vector index: a child embedding
// plus the metadata needed for owner filtering and parent resolution.
// Entries are created at indexing time, never mutated, and deleted only
// when the owning document is deleted.
type IndexEntry struct {
	// ChildID is the upsert key; re-upserting replaces the entry.
	ChildID string

	// Embedding is the child's vector. All entries in an index share
	// one dimension.
	Embedding []float32

	// OwnerID is the tenancy key.
	OwnerID string

	// DocumentID links to the owning document.
	DocumentID string

	// ParentID links to the child's enclosing parent chunk.
	ParentID string
}
