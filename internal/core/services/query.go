package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// stage identifies where the query pipeline currently is. Stages only
// advance; a stage that cannot complete either degrades in place and
// advances, or aborts the whole query.
type stage string

// Pipeline stages in execution order.
const (
	stageEnhancing  stage = "enhancing"
	stageRetrieving stage = "retrieving"
	stageReranking  stage = "reranking"
	stageGenerating stage = "generating"
	stageDone       stage = "done"
)

// DefaultTopK is the number of parents considered when the caller does
// not specify one.
const DefaultTopK = 5

// QueryService runs the four-stage query pipeline. Its defining
// property is the graceful-degradation chain: a provider outage at the
// enhance or rerank stage never becomes a user-visible failure. Only
// embedding transport loss, index unavailability or final-stage
// generation failure abort a query.
type QueryService struct {
	enhancer  *Enhancer
	retriever *Retriever
	reranker  *Reranker
	generator *Generator
}

// NewQueryService creates a query service from its stage components.
func NewQueryService(enhancer *Enhancer, retriever *Retriever, reranker *Reranker, generator *Generator) *QueryService {
	return &QueryService{
		enhancer:  enhancer,
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
	}
}

// Query answers a question against the owner's indexed documents.
// Stages run sequentially for one query; independent queries run
// concurrently and only serialise on the embedding gateway.
func (s *QueryService) Query(
	ctx context.Context, query, ownerID string, opts domain.QueryOptions,
) (*domain.Answer, error) {
	logger.Section("Query Execution")
	logger.Debug("Query: %q, owner: %s", query, ownerID)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	degraded := false
	current := stageEnhancing

	// Enhancing: best-effort HyDE expansion.
	logger.Info("Stage: %s", current)
	enhanced, enhanceDegraded := s.enhancer.Enhance(ctx, query)
	degraded = degraded || enhanceDegraded

	// Retrieving: similarity search over the owner's children.
	current = stageRetrieving
	logger.Info("Stage: %s", current)
	candidates, embedDegraded, err := s.retriever.Retrieve(ctx, enhanced, ownerID, opts.DocumentIDs, topK)
	if err != nil {
		logger.Warn("Query failed at %s: %v", current, err)
		return nil, fmt.Errorf("%s: %w", current, err)
	}
	degraded = degraded || embedDegraded

	// Reranking: best-effort second relevance pass. The reranker sees
	// the user's question, not the enhanced query: the hypothetical
	// passage would bias relevance judgements toward itself.
	current = stageReranking
	logger.Info("Stage: %s", current)
	ranked, rerankDegraded := s.reranker.Rerank(ctx, query, candidates, topK)
	degraded = degraded || rerankDegraded

	// Generating: fatal on failure, fixed answer on empty context.
	current = stageGenerating
	logger.Info("Stage: %s", current)
	answer, err := s.generator.Generate(ctx, query, ranked)
	if err != nil {
		logger.Warn("Query failed at %s: %v", current, err)
		return nil, fmt.Errorf("%s: %w", current, err)
	}

	current = stageDone
	answer.Degraded = degraded
	logger.Info("Stage: %s (degraded=%t, sources=%d)", current, degraded, len(answer.Sources))

	return answer, nil
}
