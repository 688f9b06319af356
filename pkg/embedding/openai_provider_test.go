package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"reasonmed-be/pkg/apperrors"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider("test-key", "")
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	p.baseURL = srv.URL
	return p
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "")
	var cErr *apperrors.ConfigurationError
	if !errors.As(err, &cErr) {
		t.Errorf("NewOpenAIProvider(\"\") error = %v, want ConfigurationError", err)
	}
}

func TestEmbedManyOrdersByIndex(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		// out-of-order data entries, index is authoritative
		fmt.Fprint(w, `{"data":[
			{"index":1,"embedding":[2]},
			{"index":0,"embedding":[1]},
			{"index":2,"embedding":[3]}
		]}`)
	})

	vectors, err := p.EmbedMany(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedMany() error = %v", err)
	}
	for i, want := range []float32{1, 2, 3} {
		if len(vectors[i]) != 1 || vectors[i][0] != want {
			t.Errorf("vectors[%d] = %v, want [%v]", i, vectors[i], want)
		}
	}
}

func TestEmbedManyCountMismatch(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[1]}]}`)
	})

	_, err := p.EmbedMany(context.Background(), []string{"a", "b"})
	var pErr *apperrors.ProviderError
	if !errors.As(err, &pErr) {
		t.Errorf("EmbedMany() error = %v, want ProviderError", err)
	}
}
