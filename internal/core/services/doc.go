// Package services implements the core retrieval pipeline: indexing
// (chunk, embed, upsert) and querying (enhance, retrieve, rerank,
// generate). Services depend only on domain types and driven ports;
// adapters are injected at construction.
package services
