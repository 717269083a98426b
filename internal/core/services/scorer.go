package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure LLMScorer implements the interface.
var _ driven.RelevanceScorer = (*LLMScorer)(nil)

// LLMScorer rates (query, passage) relevance by prompting the
// generation provider for a 0-10 number.
type LLMScorer struct {
	llm driven.LLMService
}

// NewLLMScorer creates a scorer over the given generation service.
func NewLLMScorer(llm driven.LLMService) *LLMScorer {
	return &LLMScorer{llm: llm}
}

// Score returns the provider's relevance rating for the pair.
// An unparseable response is a scoring failure, not a zero.
func (s *LLMScorer) Score(ctx context.Context, query, passage string) (float64, error) {
	if s.llm == nil {
		return 0, fmt.Errorf("no generation service configured")
	}

	raw, err := s.llm.Generate(ctx, fmt.Sprintf(relevancePrompt, query, passage), driven.GenerateOptions{
		MaxTokens:   8,
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("relevance generation: %w", err)
	}

	// Providers occasionally decorate the number ("8.", "8/10").
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, ".")
	if i := strings.IndexByte(raw, '/'); i > 0 {
		raw = raw[:i]
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parse relevance %q: %w", raw, err)
	}
	if score < 0 || score > 10 {
		return 0, fmt.Errorf("relevance %v out of range", score)
	}
	return score, nil
}
