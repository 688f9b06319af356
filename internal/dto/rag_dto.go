package dto

import "reasonmed-be/pkg/rag"

type QueryRequest struct {
	Query     string `json:"query" validate:"required"`
	TopK      int    `json:"top_k"`
	ModelName string `json:"model_name"`
	// Optional equality constraints on stored metadata (AND semantics)
	Filter map[string]string `json:"filter"`
}

type QueryResponse struct {
	Query              string                  `json:"query"`
	Response           string                  `json:"response"`
	RetrievedDocuments []rag.RetrievedDocument `json:"retrieved_documents"`
	NumRetrieved       int                     `json:"num_retrieved"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	VectorStoreCount int64  `json:"vector_store_count"`
}

type StatsResponse struct {
	CollectionName string `json:"collection_name"`
	DocumentCount  int64  `json:"document_count"`
	Status         string `json:"status"`
}

// StreamRetrievedEvent is the SSE payload of the retrieved event.
type StreamRetrievedEvent struct {
	NumDocuments int                     `json:"num_documents"`
	Documents    []rag.RetrievedDocument `json:"documents"`
}
