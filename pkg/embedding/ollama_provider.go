package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"reasonmed-be/pkg/apperrors"
)

// OllamaProvider implements Provider for local Ollama models (e.g., nomic-embed-text)
type OllamaProvider struct {
	BaseURL string
	Model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL: baseURL,
		Model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Ollama batch embedding endpoint (/api/embed) structures
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *OllamaProvider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := ollamaEmbedRequest{
		Model: p.Model,
		Input: texts,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/embed", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError("ollama", "embed", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewProviderError("ollama", "embed", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewProviderError("ollama", "embed",
			fmt.Errorf("status %d, body: %s", resp.StatusCode, string(bodyBytes)))
	}

	var embResp ollamaEmbedResponse
	if err := json.Unmarshal(bodyBytes, &embResp); err != nil {
		return nil, apperrors.NewProviderError("ollama", "embed", fmt.Errorf("unmarshal response: %w", err))
	}
	if len(embResp.Embeddings) != len(texts) {
		return nil, apperrors.NewProviderError("ollama", "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embResp.Embeddings)))
	}

	return embResp.Embeddings, nil
}
