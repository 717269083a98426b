package services

import (
	"context"
	"sort"
	"time"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// DefaultRerankTimeout bounds the whole reranking pass.
const DefaultRerankTimeout = 20 * time.Second

// Reranker reorders retrieval candidates with a second, more expensive
// relevance pass. Scoring failure is never fatal: the similarity
// ordering from retrieval stands.
type Reranker struct {
	scorer  driven.RelevanceScorer
	timeout time.Duration
}

// NewReranker creates a reranker. The scorer parameter is optional
// (can be nil); without it Rerank only truncates.
func NewReranker(scorer driven.RelevanceScorer, timeout time.Duration) *Reranker {
	if timeout <= 0 {
		timeout = DefaultRerankTimeout
	}
	return &Reranker{scorer: scorer, timeout: timeout}
}

// Rerank scores each candidate's parent text against the query and
// reorders by that score descending. If any scoring call fails, the
// input ordering is returned truncated to topK - a failed second pass
// must not drop results the first pass already earned. The bool
// reports whether reranking degraded to the original ordering.
func (r *Reranker) Rerank(
	ctx context.Context, query string, candidates []domain.RetrievalResult, topK int,
) ([]domain.RetrievalResult, bool) {
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}

	if r.scorer == nil || len(candidates) == 0 {
		return truncate(candidates, topK), r.scorer == nil && len(candidates) > 0
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type scored struct {
		result domain.RetrievalResult
		score  float64
		rank   int // original rank, for deterministic ties
	}

	scoredResults := make([]scored, len(candidates))
	for i, cand := range candidates {
		score, err := r.scorer.Score(callCtx, query, cand.Parent.Text)
		if err != nil {
			logger.Warn("Rerank: scoring failed at candidate %d: %v (keeping retrieval order)", i, err)
			return truncate(candidates, topK), true
		}
		scoredResults[i] = scored{result: cand, score: score, rank: i}
	}

	sort.Slice(scoredResults, func(i, j int) bool {
		if scoredResults[i].score != scoredResults[j].score {
			return scoredResults[i].score > scoredResults[j].score
		}
		return scoredResults[i].rank < scoredResults[j].rank
	})

	results := make([]domain.RetrievalResult, 0, topK)
	for _, sc := range scoredResults[:topK] {
		results = append(results, sc.result)
	}

	logger.Debug("Rerank: reordered %d candidates", len(candidates))
	return results, false
}

// truncate caps results at topK without reordering.
func truncate(results []domain.RetrievalResult, topK int) []domain.RetrievalResult {
	if len(results) > topK {
		return results[:topK]
	}
	return results
}
