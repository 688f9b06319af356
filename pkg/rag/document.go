package rag

// RetrievedDocument is one similarity-search hit, transient per query.
// SimilarityScore is 1 - distance as reported by the vector store; it is
// deliberately not clamped, so an unbounded distance metric can push it
// outside [0,1].
type RetrievedDocument struct {
	ID              string                 `json:"id"`
	Text            string                 `json:"text"`
	Metadata        map[string]interface{} `json:"metadata"`
	SimilarityScore float64                `json:"similarity_score"`
}

// Result is the full outcome of one pipeline run.
type Result struct {
	Query              string              `json:"query"`
	RetrievedDocuments []RetrievedDocument `json:"retrieved_documents"`
	Context            string              `json:"context"`
	Response           string              `json:"response"`
}
