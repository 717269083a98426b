package domain

import "fmt"

// Default chunking parameters.
const (
	// DefaultParentSize is the target parent chunk size in characters.
	DefaultParentSize = 1000

	// DefaultChildSize is the target child chunk size in characters.
	DefaultChildSize = 300

	// DefaultChildOverlap is the number of characters repeated at the
	// start of each child after the first.
	DefaultChildOverlap = 100
)

// ChunkingConfig holds validated chunking parameters.
// Use DefaultChunkingConfig for the documented defaults.
type ChunkingConfig struct {
	// ParentSize is the target parent chunk size in characters.
	ParentSize int

	// ChildSize is the target child chunk size in characters.
	ChildSize int

	// Overlap is the child overlap in characters.
	Overlap int
}

// DefaultChunkingConfig returns the documented default parameters.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		ParentSize: DefaultParentSize,
		ChildSize:  DefaultChildSize,
		Overlap:    DefaultChildOverlap,
	}
}

// Validate checks the configuration for impossible combinations.
func (c ChunkingConfig) Validate() error {
	if c.ParentSize <= 0 {
		return fmt.Errorf("%w: parent size must be positive, got %d", ErrInvalidInput, c.ParentSize)
	}
	if c.ChildSize <= 0 {
		return fmt.Errorf("%w: child size must be positive, got %d", ErrInvalidInput, c.ChildSize)
	}
	if c.ChildSize > c.ParentSize {
		return fmt.Errorf("%w: child size %d exceeds parent size %d", ErrInvalidInput, c.ChildSize, c.ParentSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidInput, c.Overlap)
	}
	if c.Overlap >= c.ChildSize {
		return fmt.Errorf("%w: overlap %d must be smaller than child size %d", ErrInvalidInput, c.Overlap, c.ChildSize)
	}
	return nil
}
