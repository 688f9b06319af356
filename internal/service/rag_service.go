package service

import (
	"context"

	"reasonmed-be/internal/dto"
	"reasonmed-be/internal/pkg/logger"
	"reasonmed-be/pkg/rag"
	"reasonmed-be/pkg/vectorstore"
)

// IRagService is the API-facing surface of the RAG pipeline.
type IRagService interface {
	Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error)
	QueryStream(ctx context.Context, req *dto.QueryRequest) <-chan rag.StreamEvent
	Health(ctx context.Context) (*dto.HealthResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type ragService struct {
	pipeline       *rag.Pipeline
	store          vectorstore.Store
	collectionName string
	logger         logger.ILogger
}

func NewRagService(pipeline *rag.Pipeline, store vectorstore.Store, collectionName string, log logger.ILogger) IRagService {
	return &ragService{
		pipeline:       pipeline,
		store:          store,
		collectionName: collectionName,
		logger:         log,
	}
}

func (s *ragService) runOptions(req *dto.QueryRequest) []rag.RunOption {
	var opts []rag.RunOption
	if req.TopK > 0 {
		opts = append(opts, rag.WithTopK(req.TopK))
	}
	if req.ModelName != "" {
		opts = append(opts, rag.WithGenerationModel(req.ModelName))
	}
	if len(req.Filter) > 0 {
		opts = append(opts, rag.WithFilter(req.Filter))
	}
	return opts
}

func (s *ragService) Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	result, err := s.pipeline.Run(ctx, req.Query, s.runOptions(req)...)
	if err != nil {
		s.logger.Error("rag", "Query failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return &dto.QueryResponse{
		Query:              result.Query,
		Response:           result.Response,
		RetrievedDocuments: result.RetrievedDocuments,
		NumRetrieved:       len(result.RetrievedDocuments),
	}, nil
}

func (s *ragService) QueryStream(ctx context.Context, req *dto.QueryRequest) <-chan rag.StreamEvent {
	return s.pipeline.RunStreaming(ctx, req.Query, s.runOptions(req)...)
}

func (s *ragService) Health(ctx context.Context) (*dto.HealthResponse, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.HealthResponse{
		Status:           "healthy",
		VectorStoreCount: count,
	}, nil
}

func (s *ragService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StatsResponse{
		CollectionName: s.collectionName,
		DocumentCount:  count,
		Status:         "operational",
	}, nil
}
