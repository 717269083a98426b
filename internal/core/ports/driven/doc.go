// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Embedder: Generates vector embeddings (wrapped by the rate-limited
//     gateway adapter in production).
//   - VectorIndex: Stores and searches child embeddings plus the parent
//     chunk store.
//   - DocumentStore: Document metadata persistence.
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - LLMService: Generation provider. Without it, query enhancement and
//     reranking are skipped and the final answer is the bare context hint.
//   - RelevanceScorer: Second-pass relevance scoring. Without it, the
//     similarity ordering from retrieval stands.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
