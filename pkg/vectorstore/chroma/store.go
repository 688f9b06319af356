package chroma

import (
	"context"
	"encoding/json"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"reasonmed-be/pkg/apperrors"
	"reasonmed-be/pkg/vectorstore"
)

// Store backs the vector index with a ChromaDB collection. The collection is
// created lazily on first open and survives server restarts.
type Store struct {
	client         chromago.Client
	collection     chromago.Collection
	collectionName string
}

var _ vectorstore.Store = &Store{}

func NewStore(ctx context.Context, serverURL, collectionName string) (*Store, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(serverURL))
	if err != nil {
		return nil, apperrors.NewConfigurationError("failed to create chroma client: %v", err)
	}

	collection, err := getOrCreateCollection(ctx, client, collectionName)
	if err != nil {
		return nil, err
	}

	return &Store{
		client:         client,
		collection:     collection,
		collectionName: collectionName,
	}, nil
}

func getOrCreateCollection(ctx context.Context, client chromago.Client, name string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Medical case documentation and reasoning patterns"),
			),
		),
	)
	if err != nil {
		return nil, apperrors.NewProviderError("chroma", "get_or_create_collection", err)
	}
	return collection, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Upsert(ctx context.Context, ids, documents []string, metadatas []map[string]interface{}, embeddings_ [][]float32) error {
	if err := vectorstore.ValidateUpsert(ids, documents, metadatas, embeddings_); err != nil {
		return err
	}

	// Writes go out in fixed-size batches to bound request size. Each batch
	// is one call to the index; earlier batches stay committed on failure.
	for start := 0; start < len(ids); start += vectorstore.UpsertBatchSize {
		end := start + vectorstore.UpsertBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		batchIDs := make([]chromago.DocumentID, 0, end-start)
		batchEmbeddings := make([]embeddings.Embedding, 0, end-start)
		batchMetadatas := make([]chromago.DocumentMetadata, 0, end-start)
		for i := start; i < end; i++ {
			batchIDs = append(batchIDs, chromago.DocumentID(ids[i]))
			batchEmbeddings = append(batchEmbeddings, embeddings.NewEmbeddingFromFloat32(embeddings_[i]))
			batchMetadatas = append(batchMetadatas, toDocumentMetadata(metadatas[i]))
		}

		err := s.collection.Upsert(ctx,
			chromago.WithIDs(batchIDs...),
			chromago.WithTexts(documents[start:end]...),
			chromago.WithEmbeddings(batchEmbeddings...),
			chromago.WithMetadatas(batchMetadatas...),
		)
		if err != nil {
			return apperrors.NewProviderError("chroma", "upsert",
				fmt.Errorf("batch starting at %d: %w", start, err))
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, embedding []float32, k int, filter map[string]string) (*vectorstore.SearchResult, error) {
	queryOpts := []chromago.CollectionQueryOption{
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(k),
	}
	if where := buildWhere(filter); where != nil {
		queryOpts = append(queryOpts, chromago.WithWhereQuery(where))
	}

	results, err := s.collection.Query(ctx, queryOpts...)
	if err != nil {
		return nil, apperrors.NewProviderError("chroma", "query", err)
	}

	result := &vectorstore.SearchResult{}

	idGroups := results.GetIDGroups()
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(idGroups) == 0 {
		return result, nil
	}

	for i, id := range idGroups[0] {
		result.IDs = append(result.IDs, string(id))
		result.Documents = append(result.Documents, documentGroups[0][i].ContentString())
		result.Metadatas = append(result.Metadatas, fromDocumentMetadata(metadataGroups[0][i]))
		result.Distances = append(result.Distances, float64(distanceGroups[0][i]))
	}
	return result, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, apperrors.NewProviderError("chroma", "count", err)
	}
	return int64(count), nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collectionName); err != nil {
		return apperrors.NewProviderError("chroma", "delete_collection", err)
	}
	collection, err := getOrCreateCollection(ctx, s.client, s.collectionName)
	if err != nil {
		return err
	}
	s.collection = collection
	return nil
}

func buildWhere(filter map[string]string) chromago.WhereFilter {
	if len(filter) == 0 {
		return nil
	}
	clauses := make([]chromago.WhereClause, 0, len(filter))
	for key, value := range filter {
		clauses = append(clauses, chromago.EqString(key, value))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return chromago.And(clauses...)
}

func toDocumentMetadata(metadata map[string]interface{}) chromago.DocumentMetadata {
	attrs := make([]*chromago.MetaAttribute, 0, len(metadata))
	for key, value := range metadata {
		switch v := value.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(key, v))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(key, int64(v)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(key, v))
		case float64:
			attrs = append(attrs, chromago.NewFloatAttribute(key, v))
		case bool:
			attrs = append(attrs, chromago.NewBoolAttribute(key, v))
		default:
			attrs = append(attrs, chromago.NewStringAttribute(key, fmt.Sprintf("%v", v)))
		}
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// The DocumentMetadata struct exposes no map accessor; round-tripping through
// JSON is the supported way to get a plain map back.
func fromDocumentMetadata(metadata chromago.DocumentMetadata) map[string]interface{} {
	result := make(map[string]interface{})
	if metadata == nil {
		return result
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		return result
	}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return make(map[string]interface{})
	}
	return result
}
