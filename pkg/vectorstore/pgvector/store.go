package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reasonmed-be/pkg/apperrors"
	"reasonmed-be/pkg/vectorstore"
)

// CaseEmbedding is the relational shape of one stored case record.
type CaseEmbedding struct {
	Id        string          `gorm:"primaryKey"`
	Document  string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	Metadata  datatypes.JSON  `gorm:"type:jsonb"`
}

func (CaseEmbedding) TableName() string {
	return "case_embeddings"
}

// Store backs the vector index with Postgres + pgvector, using cosine
// distance (`embedding <=> q`) and JSONB equality filters on metadata.
type Store struct {
	db *gorm.DB
}

var _ vectorstore.Store = &Store{}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate ensures the vector extension and the case_embeddings table exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return apperrors.NewProviderError("pgvector", "migrate", err)
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&CaseEmbedding{}); err != nil {
		return apperrors.NewProviderError("pgvector", "migrate", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, ids, documents []string, metadatas []map[string]interface{}, embeddings [][]float32) error {
	if err := vectorstore.ValidateUpsert(ids, documents, metadatas, embeddings); err != nil {
		return err
	}

	for start := 0; start < len(ids); start += vectorstore.UpsertBatchSize {
		end := start + vectorstore.UpsertBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		models := make([]*CaseEmbedding, 0, end-start)
		for i := start; i < end; i++ {
			metadataJSON, err := json.Marshal(metadatas[i])
			if err != nil {
				return apperrors.NewValidationError("metadata for id %q is not serializable: %v", ids[i], err)
			}
			models = append(models, &CaseEmbedding{
				Id:        ids[i],
				Document:  documents[i],
				Embedding: pgvector.NewVector(embeddings[i]),
				Metadata:  datatypes.JSON(metadataJSON),
			})
		}

		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).
			Create(models).Error
		if err != nil {
			return apperrors.NewProviderError("pgvector", "upsert",
				fmt.Errorf("batch starting at %d: %w", start, err))
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, embedding []float32, k int, filter map[string]string) (*vectorstore.SearchResult, error) {
	type row struct {
		CaseEmbedding
		Distance float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	query := s.db.WithContext(ctx).
		Table("case_embeddings").
		Select("case_embeddings.*, (embedding <=> ?) as distance", queryVector)

	for key, value := range filter {
		query = query.Where("metadata ->> ? = ?", key, value)
	}

	err := query.
		Order("distance ASC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewProviderError("pgvector", "search", err)
	}

	result := &vectorstore.SearchResult{}
	for _, r := range rows {
		var metadata map[string]interface{}
		if err := json.Unmarshal(r.Metadata, &metadata); err != nil {
			metadata = make(map[string]interface{})
		}
		result.IDs = append(result.IDs, r.Id)
		result.Documents = append(result.Documents, r.Document)
		result.Metadatas = append(result.Metadatas, metadata)
		result.Distances = append(result.Distances, r.Distance)
	}
	return result, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&CaseEmbedding{}).Count(&count).Error
	if err != nil {
		return 0, apperrors.NewProviderError("pgvector", "count", err)
	}
	return count, nil
}

func (s *Store) Reset(ctx context.Context) error {
	err := s.db.WithContext(ctx).Exec("DELETE FROM case_embeddings").Error
	if err != nil {
		return apperrors.NewProviderError("pgvector", "reset", err)
	}
	return nil
}
