package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Default generation parameters.
const (
	// DefaultContextBudget is the context window size in characters.
	DefaultContextBudget = 6000

	// DefaultGenerateTimeout bounds the answer generation call.
	DefaultGenerateTimeout = 60 * time.Second

	// excerptLength is how much of a parent is shown in a source
	// citation.
	excerptLength = 160
)

// InsufficientContextAnswer is returned when no relevant context exists
// for a query. It is a fixed string so the empty case never depends on
// the generation provider.
const InsufficientContextAnswer = "I could not find relevant information in your documents to answer this question."

// Generator assembles the ranked context window and synthesises the
// final answer.
type Generator struct {
	llm      driven.LLMService
	docStore driven.DocumentStore
	budget   int
	timeout  time.Duration
}

// NewGenerator creates a generator. docStore is used to resolve
// document titles for source citations and may be nil.
func NewGenerator(llm driven.LLMService, docStore driven.DocumentStore, budget int, timeout time.Duration) *Generator {
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	return &Generator{llm: llm, docStore: docStore, budget: budget, timeout: timeout}
}

// Generate produces the answer for the query from the ranked chunks.
//
// Chunks are concatenated in rank order into a bounded context window;
// when the budget would be exceeded, chunks drop from the lowest-ranked
// end first. Sources cite exactly the parents that made it into the
// window. An empty ranked list short-circuits to the fixed insufficient
// context answer without calling the provider. Provider failure here is
// fatal and wraps domain.ErrGenerationTimeout: there is no safe
// fallback text at the final stage.
func (g *Generator) Generate(ctx context.Context, query string, ranked []domain.RetrievalResult) (*domain.Answer, error) {
	if len(ranked) == 0 {
		logger.Debug("Generate: no context, returning fixed answer")
		return &domain.Answer{
			Text:    InsufficientContextAnswer,
			Sources: []domain.SourceRef{},
		}, nil
	}

	included := g.fitBudget(ranked)

	var builder strings.Builder
	for i, res := range included {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(res.Parent.Text)
	}

	if g.llm == nil {
		return nil, fmt.Errorf("%w: no generation provider configured", domain.ErrGenerationTimeout)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.llm.Generate(callCtx, fmt.Sprintf(answerPrompt, builder.String(), query), driven.GenerateOptions{
		MaxTokens:   600,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationTimeout, err)
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: g.sources(ctx, included),
	}, nil
}

// fitBudget keeps the highest-ranked prefix of chunks whose combined
// length fits the character budget. At least one chunk is always kept
// so a single oversized parent cannot empty the context.
func (g *Generator) fitBudget(ranked []domain.RetrievalResult) []domain.RetrievalResult {
	total := 0
	for i, res := range ranked {
		total += len(res.Parent.Text)
		if total > g.budget && i > 0 {
			logger.Debug("Generate: budget %d reached, dropping %d lowest-ranked chunks",
				g.budget, len(ranked)-i)
			return ranked[:i]
		}
	}
	return ranked
}

// sources builds the citation list for the included parents, in rank
// order.
func (g *Generator) sources(ctx context.Context, included []domain.RetrievalResult) []domain.SourceRef {
	refs := make([]domain.SourceRef, 0, len(included))
	for _, res := range included {
		ref := domain.SourceRef{
			ParentID: res.Parent.ID,
			Excerpt:  excerpt(res.Parent.Text),
		}
		if g.docStore != nil {
			if doc, err := g.docStore.GetDocument(ctx, res.Parent.DocumentID); err == nil {
				ref.Title = doc.Title
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

// excerpt trims text to the citation preview length on a rune boundary.
func excerpt(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= excerptLength {
		return text
	}
	return string(runes[:excerptLength]) + "..."
}
