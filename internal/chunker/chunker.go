// Package chunker splits document text into a parent/child chunk
// hierarchy. Small child chunks are embedded and indexed for precision;
// their larger enclosing parent chunks are returned at query time for
// context.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// Splitter produces deterministic parent/child chunks. Identical input
// text and parameters always yield identical boundaries and ordering,
// which keeps re-indexing idempotent.
type Splitter struct {
	cfg domain.ChunkingConfig
}

// Option configures the splitter.
type Option func(*domain.ChunkingConfig)

// WithParentSize sets the target parent chunk size in characters.
func WithParentSize(size int) Option {
	return func(c *domain.ChunkingConfig) {
		if size > 0 {
			c.ParentSize = size
		}
	}
}

// WithChildSize sets the target child chunk size in characters.
func WithChildSize(size int) Option {
	return func(c *domain.ChunkingConfig) {
		if size > 0 {
			c.ChildSize = size
		}
	}
}

// WithOverlap sets the child overlap in characters.
func WithOverlap(overlap int) Option {
	return func(c *domain.ChunkingConfig) {
		if overlap >= 0 {
			c.Overlap = overlap
		}
	}
}

// New creates a splitter with the given options applied over the
// documented defaults (parent=1000, child=300, overlap=100).
func New(opts ...Option) (*Splitter, error) {
	cfg := domain.DefaultChunkingConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chunking config: %w", err)
	}
	return &Splitter{cfg: cfg}, nil
}

// Config returns the effective chunking configuration.
func (s *Splitter) Config() domain.ChunkingConfig {
	return s.cfg
}

// Split chunks a document into parents and their children.
// Empty or whitespace-only content is rejected with domain.ErrEmptyDocument.
func (s *Splitter) Split(doc *domain.Document) ([]domain.ParentChunk, []domain.ChildChunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil, fmt.Errorf("document %s: %w", doc.ID, domain.ErrEmptyDocument)
	}

	parentSpans := splitSpans(doc.Content, s.cfg.ParentSize)

	parents := make([]domain.ParentChunk, 0, len(parentSpans))
	var children []domain.ChildChunk

	for pi, span := range parentSpans {
		parent := domain.ParentChunk{
			ID:         fmt.Sprintf("%s:p%d", doc.ID, pi),
			DocumentID: doc.ID,
			OwnerID:    doc.OwnerID,
			Text:       span,
			Position:   pi,
		}
		parents = append(parents, parent)

		childSpans := splitSpans(span, s.cfg.ChildSize)
		offset := 0
		for ci, child := range childSpans {
			text := child
			if ci > 0 {
				// Repeat the tail of the preceding text as overlap.
				start := backUp(span, offset, s.cfg.Overlap)
				text = span[start:offset] + child
			}
			children = append(children, domain.ChildChunk{
				ID:         fmt.Sprintf("%s:c%d", parent.ID, ci),
				ParentID:   parent.ID,
				DocumentID: doc.ID,
				OwnerID:    doc.OwnerID,
				Text:       text,
				Position:   ci,
			})
			offset += len(child)
		}
	}

	return parents, children, nil
}

// splitSpans tiles text into consecutive spans of at most size bytes,
// preferring to cut at the nearest sentence or paragraph break at or
// before the target size. The spans concatenate back to the input.
func splitSpans(text string, size int) []string {
	var spans []string
	// How far back from the target we are willing to move for a break.
	tolerance := size / 5

	for len(text) > 0 {
		if len(text) <= size {
			spans = append(spans, text)
			break
		}

		cut := boundaryBefore(text, size, tolerance)
		if cut <= 0 {
			// No break within tolerance: hard cut at the target size,
			// backed up to a rune boundary.
			cut = size
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = size
			}
		}
		spans = append(spans, text[:cut])
		text = text[cut:]
	}

	return spans
}

// boundaryBefore finds the byte offset just after the last sentence or
// paragraph break at or before limit, searching no further back than
// limit-tolerance. Returns 0 if none exists.
func boundaryBefore(text string, limit, tolerance int) int {
	floor := limit - tolerance
	if floor < 1 {
		floor = 1
	}

	best := 0
	for i := limit - 1; i >= floor; i-- {
		c := text[i]
		if c == '\n' {
			best = i + 1
			break
		}
		if c == '.' || c == '!' || c == '?' {
			// A terminator only ends a sentence when followed by
			// whitespace or end of text.
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\n' || text[i+1] == '\t' {
				best = i + 1
				break
			}
		}
	}

	return best
}

// backUp moves at most overlap bytes back from offset without landing
// in the middle of a rune.
func backUp(text string, offset, overlap int) int {
	start := offset - overlap
	if start < 0 {
		return 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	return start
}
