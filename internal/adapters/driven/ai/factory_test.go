package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmbeddingProvider(t *testing.T) {
	provider, err := CreateEmbeddingProvider(EmbeddingSettings{
		Provider: ProviderOllama,
		Model:    "nomic-embed-text",
	})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.Equal(t, "nomic-embed-text", provider.ModelName())
	assert.NoError(t, provider.Close())
}

func TestCreateEmbeddingProvider_OpenAIRequiresKey(t *testing.T) {
	_, err := CreateEmbeddingProvider(EmbeddingSettings{
		Provider: ProviderOpenAI,
		Model:    "text-embedding-3-small",
	})
	require.Error(t, err)
}

func TestCreateEmbeddingProvider_AnthropicUnsupported(t *testing.T) {
	_, err := CreateEmbeddingProvider(EmbeddingSettings{
		Provider: ProviderAnthropic,
		Model:    "claude-3-5-sonnet-latest",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support embeddings")
}

func TestCreateEmbeddingProvider_Unknown(t *testing.T) {
	_, err := CreateEmbeddingProvider(EmbeddingSettings{Provider: "bedrock"})
	require.Error(t, err)
}

func TestCreateLLMService(t *testing.T) {
	svc, err := CreateLLMService(LLMSettings{
		Provider: ProviderOllama,
		Model:    "llama3.2",
	})
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, "llama3.2", svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestCreateLLMService_Unconfigured(t *testing.T) {
	svc, err := CreateLLMService(LLMSettings{})
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestCreateLLMService_RequiresKeys(t *testing.T) {
	_, err := CreateLLMService(LLMSettings{Provider: ProviderOpenAI, Model: "gpt-4o-mini"})
	require.Error(t, err)

	_, err = CreateLLMService(LLMSettings{Provider: ProviderAnthropic, Model: "claude-3-5-sonnet-latest"})
	require.Error(t, err)
}

func TestCreateLLMService_Unknown(t *testing.T) {
	_, err := CreateLLMService(LLMSettings{Provider: "bedrock"})
	require.Error(t, err)
}
