package ingest

import (
	"fmt"
)

// reasoningDisplayLimit bounds the reasoning excerpt inside the indexable
// summary text. Unlike the retrieval-context excerpt, the ellipsis here is
// only appended when text was actually cut.
const reasoningDisplayLimit = 500

// ProcessedRecord is one normalized case ready for embedding and storage.
type ProcessedRecord struct {
	QuestionID      string
	Text            string
	FullQuestion    string
	FullReasoning   string
	FullResponse    string
	MedicalKeywords string
}

// Metadata shapes the record's searchable fields the way the vector store
// persists them.
func (r *ProcessedRecord) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"full_question":    r.FullQuestion,
		"full_reasoning":   r.FullReasoning,
		"full_response":    r.FullResponse,
		"medical_keywords": r.MedicalKeywords,
	}
}

// ProcessRecord normalizes one raw corpus record: stable case_<idx> id, a
// compact indexable summary, and the full fields preserved as metadata.
func ProcessRecord(record RawRecord, idx int) ProcessedRecord {
	question := record.Question
	reasoning := record.reasoning()
	response := record.response()

	questionID := fmt.Sprintf("case_%d", idx)

	reasoningExcerpt := reasoning
	if runes := []rune(reasoning); len(runes) > reasoningDisplayLimit {
		reasoningExcerpt = string(runes[:reasoningDisplayLimit]) + "..."
	}

	formattedText := fmt.Sprintf("Case: %s\n\nReasoning: %s\n\nDiagnosis: %s",
		question, reasoningExcerpt, response)

	return ProcessedRecord{
		QuestionID:      questionID,
		Text:            formattedText,
		FullQuestion:    question,
		FullReasoning:   reasoning,
		FullResponse:    response,
		MedicalKeywords: ExtractKeywords(fmt.Sprintf("%s %s %s", question, reasoning, response)),
	}
}

// ProcessAll normalizes the whole corpus in input order.
func ProcessAll(records []RawRecord) []ProcessedRecord {
	processed := make([]ProcessedRecord, 0, len(records))
	for idx, record := range records {
		processed = append(processed, ProcessRecord(record, idx))
	}
	return processed
}
