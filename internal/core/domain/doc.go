// Package domain defines the core business entities for the retrieval pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded document owned by a single user
//   - ParentChunk / ChildChunk: The two-tier chunk hierarchy
//   - IndexEntry: A child embedding plus its tenancy metadata
//   - RetrievalResult: A ranked, deduplicated retrieval candidate
//   - Answer: The generated answer with its cited sources
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
