package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reasonmed-be/pkg/apperrors"
	"reasonmed-be/pkg/llm"
)

type OpenAIProvider struct {
	apiKey    string
	baseURL   string
	modelName string
	client    *http.Client
}

// Ensure OpenAIProvider implements LLMProvider
var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, modelName string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, apperrors.NewConfigurationError("OPENAI_API_KEY not found in environment variables")
	}
	return &OpenAIProvider{
		apiKey:    apiKey,
		baseURL:   "https://api.openai.com/v1",
		modelName: modelName,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// --- Request/Response structs (Internal to this package) ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (p *OpenAIProvider) buildRequest(history []llm.Message, stream bool, opts ...llm.Option) ([]byte, error) {
	options := &llm.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	model := p.modelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := chatRequest{
		Model:       model,
		Messages:    history,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
		Stream:      stream,
	}

	return json.Marshal(reqPayload)
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	payloadBytes, err := p.buildRequest(history, false, opts...)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperrors.NewProviderError("openai", "chat", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewProviderError("openai", "chat", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewProviderError("openai", "chat",
			fmt.Errorf("status %d, body: %s", resp.StatusCode, string(bodyBytes)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", apperrors.NewProviderError("openai", "chat", fmt.Errorf("unmarshal response: %w", err))
	}
	if len(chatResp.Choices) == 0 {
		return "", apperrors.NewProviderError("openai", "chat", fmt.Errorf("empty choices in response"))
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ChatStream issues a streaming completion and re-emits each SSE delta as
// one StreamChunk. Chunk boundaries are exactly as delivered upstream.
func (p *OpenAIProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	payloadBytes, err := p.buildRequest(history, true, opts...)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError("openai", "chat_stream", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, apperrors.NewProviderError("openai", "chat_stream",
			fmt.Errorf("status %d, body: %s", resp.StatusCode, string(bodyBytes)))
	}

	chunks := make(chan llm.StreamChunk)

	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}

			var streamResp chatStreamResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				p.sendChunk(ctx, chunks, llm.StreamChunk{
					Err: apperrors.NewProviderError("openai", "chat_stream", fmt.Errorf("unmarshal chunk: %w", err)),
				})
				return
			}
			if len(streamResp.Choices) == 0 {
				continue
			}
			content := streamResp.Choices[0].Delta.Content
			if content == "" {
				continue
			}
			if !p.sendChunk(ctx, chunks, llm.StreamChunk{Content: content}) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			p.sendChunk(ctx, chunks, llm.StreamChunk{
				Err: apperrors.NewProviderError("openai", "chat_stream", err),
			})
		}
	}()

	return chunks, nil
}

func (p *OpenAIProvider) sendChunk(ctx context.Context, chunks chan<- llm.StreamChunk, chunk llm.StreamChunk) bool {
	select {
	case <-ctx.Done():
		return false
	case chunks <- chunk:
		return true
	}
}
