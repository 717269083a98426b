package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.LLMService for testing. Responses are
// matched by prompt substring so one mock can serve multiple pipeline
// stages in a single test.
type mockLLM struct {
	response    string
	responses   map[string]string // substring -> response
	generateErr error
	calls       []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls = append(m.calls, prompt)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	for substr, resp := range m.responses {
		if strings.Contains(prompt, substr) {
			return resp, nil
		}
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string        { return "mock-model" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error             { return nil }

// mockEmbedder implements driven.Embedder for testing.
type mockEmbedder struct {
	vector   []float32
	degraded bool
	embedErr error
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) (domain.EmbedResult, error) {
	if m.embedErr != nil {
		return domain.EmbedResult{}, m.embedErr
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = m.vector
	}
	return domain.EmbedResult{Vectors: vectors, Degraded: m.degraded}, nil
}

func (m *mockEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, bool, error) {
	if m.embedErr != nil {
		return nil, false, m.embedErr
	}
	return m.vector, m.degraded, nil
}

func (m *mockEmbedder) Dimensions() int { return len(m.vector) }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	parents   map[string]domain.ParentChunk
	searchErr error
	upsertErr error
	deleteErr error

	upsertedParents []domain.ParentChunk
	upsertedEntries []domain.IndexEntry
	deletedDocs     []string
}

func (m *mockVectorIndex) Upsert(_ context.Context, parents []domain.ParentChunk, entries []domain.IndexEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upsertedParents = append(m.upsertedParents, parents...)
	m.upsertedEntries = append(m.upsertedEntries, entries...)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, topK int, _ driven.SearchFilter) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:topK], nil
}

func (m *mockVectorIndex) GetParent(_ context.Context, parentID string) (*domain.ParentChunk, error) {
	parent, ok := m.parents[parentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &parent, nil
}

func (m *mockVectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedDocs = append(m.deletedDocs, documentID)
	return nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockScorer implements driven.RelevanceScorer for testing. Scores are
// matched by passage substring.
type mockScorer struct {
	scores   map[string]float64 // passage substring -> score
	scoreErr error
}

func (m *mockScorer) Score(_ context.Context, _ string, passage string) (float64, error) {
	if m.scoreErr != nil {
		return 0, m.scoreErr
	}
	for substr, score := range m.scores {
		if strings.Contains(passage, substr) {
			return score, nil
		}
	}
	return 0, nil
}
