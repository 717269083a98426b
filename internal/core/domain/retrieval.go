package domain

// RetrievalResult is a single retrieval candidate: a parent chunk reached
// through one of its children, with the best similarity score seen for
// any of that parent's children.
type RetrievalResult struct {
	// Parent is the resolved parent chunk.
	Parent ParentChunk

	// Score is the similarity score of the best-matching child.
	Score float64

	// ChildID identifies the child that produced the score.
	ChildID string
}

// SourceRef is a cited source in a generated answer.
type SourceRef struct {
	// ParentID is the parent chunk included in the answer context.
	ParentID string

	// Title is the owning document's title.
	Title string

	// Excerpt is a short preview of the parent text.
	Excerpt string
}

// Answer is the final output of the query pipeline.
type Answer struct {
	// Text is the generated answer with no structural markup.
	Text string

	// Sources are the parents actually included in the context window,
	// in rank order.
	Sources []SourceRef

	// Degraded is true if any stage fell back to reduced quality
	// (quota-exhausted embeddings, failed enhancement or reranking).
	Degraded bool
}

// QueryOptions configures a single query execution.
type QueryOptions struct {
	// TopK is the maximum number of parents considered (default 5).
	TopK int

	// DocumentIDs restricts retrieval to specific documents.
	// Empty means all of the owner's documents.
	DocumentIDs []string
}

// IndexStats summarises one indexing run.
type IndexStats struct {
	// Parents is the number of parent chunks created.
	Parents int

	// Children is the number of child chunks embedded and indexed.
	Children int

	// Degraded is true if any embedding came from the quota fallback.
	Degraded bool
}
