package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"reasonmed-be/internal/pkg/logger"
	"reasonmed-be/pkg/apperrors"
	"reasonmed-be/pkg/embedding"
	"reasonmed-be/pkg/vectorstore"
)

type fakeEmbedProvider struct {
	vector []float32
	err    error
}

func (f *fakeEmbedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

func (f *fakeEmbedProvider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, nil
}

type fakeStore struct {
	result *vectorstore.SearchResult
	err    error

	gotK      int
	gotFilter map[string]string
}

func (f *fakeStore) Upsert(ctx context.Context, ids, documents []string, metadatas []map[string]interface{}, embeddings [][]float32) error {
	return nil
}

func (f *fakeStore) Search(ctx context.Context, embedding []float32, k int, filter map[string]string) (*vectorstore.SearchResult, error) {
	f.gotK = k
	f.gotFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeStore) Reset(ctx context.Context) error          { return nil }

func newTestRetriever(provider embedding.Provider, store vectorstore.Store) *Retriever {
	return NewRetriever(embedding.NewService(provider, logger.NewNopLogger()), store, logger.NewNopLogger())
}

func TestRetrieveSimilarityScores(t *testing.T) {
	store := &fakeStore{
		result: &vectorstore.SearchResult{
			IDs:       []string{"case_0", "case_1", "case_2"},
			Documents: []string{"doc a", "doc b", "doc c"},
			Metadatas: []map[string]interface{}{{}, {}, {}},
			Distances: []float64{0.1, 0.85, 1.4},
		},
	}
	r := newTestRetriever(&fakeEmbedProvider{vector: []float32{0.1, 0.2}}, store)

	docs, err := r.Retrieve(context.Background(), "chest pain", 3, nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("Retrieve() returned %d docs, want 3", len(docs))
	}

	// similarity is 1 - distance, including negative values when the
	// distance exceeds 1
	wantScores := []float64{0.9, 0.15, -0.4}
	for i, doc := range docs {
		if math.Abs(doc.SimilarityScore-wantScores[i]) > 1e-9 {
			t.Errorf("doc[%d].SimilarityScore = %v, want %v", i, doc.SimilarityScore, wantScores[i])
		}
	}
	if store.gotK != 3 {
		t.Errorf("store received k = %d, want 3", store.gotK)
	}
}

func TestRetrieveValidatesTopK(t *testing.T) {
	r := newTestRetriever(&fakeEmbedProvider{vector: []float32{1}}, &fakeStore{})

	for _, topK := range []int{0, -1} {
		_, err := r.Retrieve(context.Background(), "q", topK, nil)
		var vErr *apperrors.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Retrieve(topK=%d) error = %v, want ValidationError", topK, err)
		}
	}
}

func TestRetrievePropagatesEmbedFailure(t *testing.T) {
	wantErr := apperrors.NewProviderError("openai", "embed", errors.New("boom"))
	r := newTestRetriever(&fakeEmbedProvider{err: wantErr}, &fakeStore{})

	_, err := r.Retrieve(context.Background(), "q", 5, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("Retrieve() error = %v, want %v", err, wantErr)
	}
}

func TestFormatContext(t *testing.T) {
	r := NewRetriever(nil, nil, logger.NewNopLogger())

	longReasoning := strings.Repeat("r", 310)

	tests := []struct {
		name string
		docs []RetrievedDocument
		want string
	}{
		{
			name: "no documents",
			docs: nil,
			want: "",
		},
		{
			name: "full metadata",
			docs: []RetrievedDocument{
				{
					SimilarityScore: 0.8234,
					Metadata: map[string]interface{}{
						"full_question":  "Patient presents with fever",
						"full_reasoning": "Viral etiology likely",
						"full_response":  "Influenza",
					},
				},
			},
			want: "Similar Case 1 (Similarity: 0.823):\n" +
				"Question: Patient presents with fever\n" +
				"Reasoning: Viral etiology likely...\n" +
				"Diagnosis: Influenza\n",
		},
		{
			name: "missing metadata falls back to N/A",
			docs: []RetrievedDocument{
				{SimilarityScore: 0.5, Metadata: map[string]interface{}{}},
			},
			want: "Similar Case 1 (Similarity: 0.500):\n" +
				"Question: N/A\n" +
				"Reasoning: N/A...\n" +
				"Diagnosis: N/A\n",
		},
		{
			name: "reasoning truncated at 300 characters",
			docs: []RetrievedDocument{
				{
					SimilarityScore: 1.0,
					Metadata: map[string]interface{}{
						"full_question":  "Q",
						"full_reasoning": longReasoning,
						"full_response":  "R",
					},
				},
			},
			want: "Similar Case 1 (Similarity: 1.000):\n" +
				"Question: Q\n" +
				"Reasoning: " + strings.Repeat("r", 300) + "...\n" +
				"Diagnosis: R\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.FormatContext(tt.docs)
			if got != tt.want {
				t.Errorf("FormatContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatContextRankHeaders(t *testing.T) {
	r := NewRetriever(nil, nil, logger.NewNopLogger())

	docs := []RetrievedDocument{
		{SimilarityScore: 0.9},
		{SimilarityScore: 0.7},
		{SimilarityScore: 0.5},
	}
	got := r.FormatContext(docs)

	for i := 1; i <= 3; i++ {
		header := "Similar Case " + string(rune('0'+i)) + " ("
		if !strings.Contains(got, header) {
			t.Errorf("FormatContext() missing header %q", header)
		}
	}
}
