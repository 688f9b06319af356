package rag

import (
	"context"

	"reasonmed-be/pkg/llm"
)

// Generation sampling is fixed; callers vary only the model and the system
// prompt.
const (
	generationTemperature = 0.7
	generationMaxTokens   = 1000
)

// Generator turns a query plus retrieved-case context into clinical
// documentation via an LLM provider, blocking or streamed.
type Generator struct {
	provider llm.LLMProvider
}

func NewGenerator(provider llm.LLMProvider) *Generator {
	return &Generator{provider: provider}
}

func buildHistory(query, contextText, systemPrompt string) []llm.Message {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(query, contextText)},
	}
}

// Generate issues one blocking completion call and returns the full
// response text. Upstream failures propagate as ProviderError; no retry.
func (g *Generator) Generate(ctx context.Context, query, contextText, systemPrompt string, opts ...llm.Option) (string, error) {
	options := append([]llm.Option{
		llm.WithTemperature(generationTemperature),
		llm.WithMaxTokens(generationMaxTokens),
	}, opts...)

	return g.provider.Chat(ctx, buildHistory(query, contextText, systemPrompt), options...)
}

// GenerateStream issues a streaming completion with the same prompt as
// Generate and re-emits upstream fragments in arrival order. A mid-stream
// failure arrives as the final chunk's Err; fragments already delivered are
// not retracted. The stream is not restartable.
func (g *Generator) GenerateStream(ctx context.Context, query, contextText, systemPrompt string, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	options := append([]llm.Option{
		llm.WithTemperature(generationTemperature),
		llm.WithMaxTokens(generationMaxTokens),
	}, opts...)

	return g.provider.ChatStream(ctx, buildHistory(query, contextText, systemPrompt), options...)
}
