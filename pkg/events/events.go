package events

// PublishEmbedCaseMessage is the payload of one case-ingest event published
// to the embedding topic. The consumer embeds the summary text and upserts
// the record into the vector store.
type PublishEmbedCaseMessage struct {
	CaseID          string `json:"case_id"`
	Text            string `json:"text"`
	FullQuestion    string `json:"full_question"`
	FullReasoning   string `json:"full_reasoning"`
	FullResponse    string `json:"full_response"`
	MedicalKeywords string `json:"medical_keywords"`
}

func (m *PublishEmbedCaseMessage) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"full_question":    m.FullQuestion,
		"full_reasoning":   m.FullReasoning,
		"full_response":    m.FullResponse,
		"medical_keywords": m.MedicalKeywords,
	}
}
