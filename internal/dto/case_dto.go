package dto

type IngestCaseRequest struct {
	Question  string `json:"question" validate:"required"`
	Reasoning string `json:"reasoning" validate:"required"`
	Response  string `json:"response" validate:"required"`
}

type IngestCaseResponse struct {
	CaseID string `json:"case_id"`
	Status string `json:"status"`
}
