package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reasonmed-be/pkg/apperrors"
	"reasonmed-be/pkg/llm"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*OpenAIProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider("test-key", "gpt-4")
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	p.baseURL = srv.URL
	return p, srv
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "gpt-4")
	var cErr *apperrors.ConfigurationError
	if !errors.As(err, &cErr) {
		t.Errorf("NewOpenAIProvider(\"\") error = %v, want ConfigurationError", err)
	}
}

func TestChat(t *testing.T) {
	var gotReq chatRequest
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"a diagnosis"}}]}`)
	})

	got, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}},
		llm.WithTemperature(0.7), llm.WithMaxTokens(1000))
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "a diagnosis" {
		t.Errorf("Chat() = %q", got)
	}
	if gotReq.Model != "gpt-4" || gotReq.Temperature != 0.7 || gotReq.MaxTokens != 1000 {
		t.Errorf("request = %+v", gotReq)
	}
	if gotReq.Stream {
		t.Error("blocking Chat sent stream=true")
	}
}

func TestChatModelOverride(t *testing.T) {
	var gotReq chatRequest
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	})

	if _, err := p.Chat(context.Background(), nil, llm.WithModel("gpt-3.5-turbo")); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if gotReq.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q, want override", gotReq.Model)
	}
}

func TestChatUpstreamFailure(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	})

	_, err := p.Chat(context.Background(), nil)
	var pErr *apperrors.ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("Chat() error = %v, want ProviderError", err)
	}
	if pErr.Provider != "openai" {
		t.Errorf("Provider = %q", pErr.Provider)
	}
}

func TestChatStream(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"The \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"answer\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	chunks, err := p.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	var parts []string
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("unexpected chunk error: %v", chunk.Err)
		}
		parts = append(parts, chunk.Content)
	}

	// empty deltas are skipped, boundaries otherwise preserved
	if len(parts) != 2 || strings.Join(parts, "") != "The answer" {
		t.Errorf("chunks = %q", parts)
	}
}

func TestChatStreamMalformedChunk(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok \"}}]}\n\n")
		fmt.Fprint(w, "data: {broken\n\n")
	})

	chunks, err := p.ChatStream(context.Background(), nil)
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	var last llm.StreamChunk
	var received []string
	for chunk := range chunks {
		last = chunk
		if chunk.Err == nil {
			received = append(received, chunk.Content)
		}
	}

	// fragments already delivered stand, the failure arrives last
	if len(received) != 1 || received[0] != "ok " {
		t.Errorf("received = %q", received)
	}
	var pErr *apperrors.ProviderError
	if !errors.As(last.Err, &pErr) {
		t.Errorf("final chunk error = %v, want ProviderError", last.Err)
	}
}

func TestChatStreamNonOKStatus(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := p.ChatStream(context.Background(), nil)
	var pErr *apperrors.ProviderError
	if !errors.As(err, &pErr) {
		t.Errorf("ChatStream() error = %v, want ProviderError", err)
	}
}
