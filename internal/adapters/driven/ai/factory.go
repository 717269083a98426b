// Package ai provides factory functions for creating AI provider adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/embedding/gateway"
	ollamaembed "github.com/custodia-labs/askdocs/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/askdocs/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for provider connectivity validation.
const pingTimeout = 5 * time.Second

// Provider names accepted in configuration.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// EmbeddingSettings configures the embedding provider and its gateway.
type EmbeddingSettings struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	MinInterval time.Duration
	DailyQuota  int
}

// LLMSettings configures the generation provider.
type LLMSettings struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// InitResult bundles the constructed AI adapters. The Embedder wraps
// the raw provider in the rate-limiting gateway; callers use Embedder
// and close via Close.
type InitResult struct {
	Embedder driven.Embedder
	LLM      driven.LLMService

	provider driven.EmbeddingProvider
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.provider != nil {
		r.provider.Close()
	}
	if r.LLM != nil {
		r.LLM.Close()
	}
}

// Init creates and validates the embedding and LLM adapters. The
// embedding provider must be reachable; indexing and retrieval are
// impossible without it. An unreachable LLM is tolerated: the query
// pipeline degrades, it does not break.
func Init(embed EmbeddingSettings, llm LLMSettings) (*InitResult, []string, error) {
	var warnings []string

	provider, err := CreateEmbeddingProvider(embed)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if _, err := provider.Embed(ctx, "ping"); err != nil {
		provider.Close()
		return nil, nil, fmt.Errorf("%w: provider unreachable: %w", domain.ErrEmbeddingProvider, err)
	}

	gw := gateway.New(provider, gateway.Config{
		MinInterval: embed.MinInterval,
		DailyQuota:  embed.DailyQuota,
	})

	llmSvc, err := CreateLLMService(llm)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("LLM unavailable (%v); answers will be degraded", err))
		llmSvc = nil
	} else if llmSvc != nil {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), pingTimeout)
		defer pingCancel()
		if err := llmSvc.Ping(pingCtx); err != nil {
			warnings = append(warnings, fmt.Sprintf("LLM unreachable (%v); answers will be degraded", err))
			llmSvc.Close()
			llmSvc = nil
		}
	}

	return &InitResult{
		Embedder: gw,
		LLM:      llmSvc,
		provider: provider,
	}, warnings, nil
}

// CreateEmbeddingProvider creates the appropriate embedding provider.
func CreateEmbeddingProvider(settings EmbeddingSettings) (driven.EmbeddingProvider, error) {
	switch settings.Provider {
	case ProviderOllama:
		return ollamaembed.New(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case ProviderOpenAI:
		return openaiembed.New(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case ProviderAnthropic:
		// Anthropic does not offer an embeddings API.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service.
// Returns nil if no provider is configured.
func CreateLLMService(settings LLMSettings) (driven.LLMService, error) {
	switch settings.Provider {
	case "":
		return nil, nil

	case ProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case ProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case ProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
