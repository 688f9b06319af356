package vectorstore

import (
	"context"

	"reasonmed-be/pkg/apperrors"
)

// UpsertBatchSize bounds the number of records sent to the backing index in
// one write call.
const UpsertBatchSize = 100

// SearchResult carries the four parallel result slices of a nearest-neighbor
// query, ordered by ascending distance (nearest first). All four slices have
// equal length, at most k.
type SearchResult struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]interface{}
	Distances []float64
}

// Store is a named, durable collection keyed by string id, each entry holding
// a vector, a document text and a metadata mapping.
type Store interface {
	// Upsert writes records in batches; id collisions overwrite the prior
	// record. Prior batches stay committed if a later batch fails.
	Upsert(ctx context.Context, ids, documents []string, metadatas []map[string]interface{}, embeddings [][]float32) error

	// Search returns the k nearest entries to embedding, optionally
	// restricted to entries whose metadata matches every filter key/value
	// (equality, AND semantics). Fewer than k matches yield a shorter
	// result, never an error.
	Search(ctx context.Context, embedding []float32, k int, filter map[string]string) (*SearchResult, error)

	// Count reports the current number of stored records.
	Count(ctx context.Context) (int64, error)

	// Reset wipes the collection.
	Reset(ctx context.Context) error
}

// ValidateUpsert enforces the equal-lengths contract shared by all backends.
func ValidateUpsert(ids, documents []string, metadatas []map[string]interface{}, embeddings [][]float32) error {
	n := len(ids)
	if len(documents) != n || len(metadatas) != n || len(embeddings) != n {
		return apperrors.NewValidationError(
			"all input lists must have the same length: ids=%d documents=%d metadatas=%d embeddings=%d",
			n, len(documents), len(metadatas), len(embeddings))
	}
	return nil
}
