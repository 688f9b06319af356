package rag

import (
	"context"
	"fmt"
	"strings"

	"reasonmed-be/internal/pkg/logger"
	"reasonmed-be/pkg/apperrors"
	"reasonmed-be/pkg/embedding"
	"reasonmed-be/pkg/vectorstore"
)

// reasoningContextLimit bounds how much of a case's reasoning text goes into
// the generation context.
const reasoningContextLimit = 300

// Retriever embeds a query, runs the nearest-neighbor search and shapes the
// hits into RetrievedDocuments.
type Retriever struct {
	embedder *embedding.Service
	store    vectorstore.Store
	logger   logger.ILogger
}

func NewRetriever(embedder *embedding.Service, store vectorstore.Store, log logger.ILogger) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   log,
	}
}

// Retrieve returns the topK most similar stored cases for query, nearest
// first. Embedding and search failures propagate untouched; there is no
// fallback.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, filter map[string]string) ([]RetrievedDocument, error) {
	if topK < 1 {
		return nil, apperrors.NewValidationError("topK must be >= 1, got %d", topK)
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := r.store.Search(ctx, queryEmbedding, topK, filter)
	if err != nil {
		return nil, err
	}

	docs := make([]RetrievedDocument, 0, len(results.IDs))
	for i := range results.IDs {
		docs = append(docs, RetrievedDocument{
			ID:              results.IDs[i],
			Text:            results.Documents[i],
			Metadata:        results.Metadatas[i],
			SimilarityScore: 1 - results.Distances[i],
		})
	}

	r.logger.Debug("retriever", "Retrieved documents", map[string]interface{}{
		"query_len": len(query),
		"top_k":     topK,
		"hits":      len(docs),
	})
	return docs, nil
}

// FormatContext renders retrieved documents into the textual context the
// generator consumes. The field order, the N/A fallbacks and the
// unconditional ellipsis after the reasoning excerpt are part of the
// contract; downstream prompts depend on this exact shape.
func (r *Retriever) FormatContext(docs []RetrievedDocument) string {
	contextParts := make([]string, 0, len(docs)*5)

	for i, doc := range docs {
		contextParts = append(contextParts,
			fmt.Sprintf("Similar Case %d (Similarity: %.3f):", i+1, doc.SimilarityScore))
		contextParts = append(contextParts,
			fmt.Sprintf("Question: %s", metadataString(doc.Metadata, "full_question")))
		contextParts = append(contextParts,
			fmt.Sprintf("Reasoning: %s...", truncateRunes(metadataString(doc.Metadata, "full_reasoning"), reasoningContextLimit)))
		contextParts = append(contextParts,
			fmt.Sprintf("Diagnosis: %s", metadataString(doc.Metadata, "full_response")))
		contextParts = append(contextParts, "")
	}

	return strings.Join(contextParts, "\n")
}

func metadataString(metadata map[string]interface{}, key string) string {
	if metadata == nil {
		return "N/A"
	}
	value, ok := metadata[key]
	if !ok || value == nil {
		return "N/A"
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Sprintf("%v", value)
	}
	return s
}

// truncateRunes cuts at character boundaries, not bytes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
