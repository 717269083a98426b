package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// DefaultEnhanceTimeout bounds the hypothetical-passage generation.
const DefaultEnhanceTimeout = 10 * time.Second

// Enhancer expands a query with a generated hypothetical passage before
// embedding, so retrieval matches answer-shaped text. Enhancement is
// strictly best-effort: any provider failure or timeout returns the
// original query unchanged rather than blocking the pipeline.
type Enhancer struct {
	llm     driven.LLMService
	timeout time.Duration
}

// NewEnhancer creates an enhancer. The llm parameter is optional (can
// be nil); without it Enhance is a no-op.
func NewEnhancer(llm driven.LLMService, timeout time.Duration) *Enhancer {
	if timeout <= 0 {
		timeout = DefaultEnhanceTimeout
	}
	return &Enhancer{llm: llm, timeout: timeout}
}

// Enhance returns the query joined with a hypothetical passage, or the
// original query when generation is unavailable or fails. The bool
// reports whether enhancement degraded to the original.
func (e *Enhancer) Enhance(ctx context.Context, query string) (string, bool) {
	if e.llm == nil {
		logger.Debug("Enhance: no generation provider, using original query")
		return query, true
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	passage, err := e.llm.Generate(callCtx, fmt.Sprintf(hypotheticalPrompt, query), driven.GenerateOptions{
		MaxTokens:   200,
		Temperature: 0.3,
	})
	if err != nil {
		logger.Warn("Enhance: generation failed: %v (using original query)", err)
		return query, true
	}

	passage = strings.TrimSpace(passage)
	if passage == "" {
		logger.Warn("Enhance: empty passage returned (using original query)")
		return query, true
	}

	logger.Debug("Enhance: passage length %d", len(passage))
	return query + "\n\n" + passage, false
}
