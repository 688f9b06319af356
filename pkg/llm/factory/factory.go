package factory

import (
	"reasonmed-be/pkg/apperrors"
	"reasonmed-be/pkg/llm"
	"reasonmed-be/pkg/llm/ollama"
	"reasonmed-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		return openai.NewOpenAIProvider(apiKey, modelName)
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, apperrors.NewConfigurationError("unsupported LLM provider: %s", providerType)
	}
}
