package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"reasonmed-be/pkg/vectorstore"
)

type record struct {
	id        string
	document  string
	metadata  map[string]interface{}
	embedding []float32
}

// Store is a brute-force cosine-distance vector store. It backs tests and
// local development where neither Chroma nor Postgres is running.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
}

var _ vectorstore.Store = &Store{}

func NewStore() *Store {
	return &Store{
		records: make(map[string]*record),
	}
}

func (s *Store) Upsert(ctx context.Context, ids, documents []string, metadatas []map[string]interface{}, embeddings [][]float32) error {
	if err := vectorstore.ValidateUpsert(ids, documents, metadatas, embeddings); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range ids {
		s.records[ids[i]] = &record{
			id:        ids[i],
			document:  documents[i],
			metadata:  metadatas[i],
			embedding: embeddings[i],
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, embedding []float32, k int, filter map[string]string) (*vectorstore.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec      *record
		distance float64
	}

	candidates := make([]scored, 0, len(s.records))
	for _, rec := range s.records {
		if !matchesFilter(rec.metadata, filter) {
			continue
		}
		candidates = append(candidates, scored{
			rec:      rec,
			distance: cosineDistance(embedding, rec.embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	result := &vectorstore.SearchResult{
		IDs:       make([]string, 0, len(candidates)),
		Documents: make([]string, 0, len(candidates)),
		Metadatas: make([]map[string]interface{}, 0, len(candidates)),
		Distances: make([]float64, 0, len(candidates)),
	}
	for _, c := range candidates {
		result.IDs = append(result.IDs, c.rec.id)
		result.Documents = append(result.Documents, c.rec.document)
		result.Metadatas = append(result.Metadatas, c.rec.metadata)
		result.Distances = append(result.Distances, c.distance)
	}
	return result, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*record)
	return nil
}

func matchesFilter(metadata map[string]interface{}, filter map[string]string) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || fmt.Sprintf("%v", got) != want {
			return false
		}
	}
	return true
}

// cosineDistance is 1 - cosine similarity, matching the metric Chroma and
// pgvector report for cosine space.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
