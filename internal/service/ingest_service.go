package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"reasonmed-be/internal/dto"
	"reasonmed-be/internal/pkg/logger"
	"reasonmed-be/pkg/events"
	"reasonmed-be/pkg/ingest"
)

// IIngestService accepts single case records over the API and hands them to
// the embedding consumer asynchronously.
type IIngestService interface {
	IngestCase(ctx context.Context, req *dto.IngestCaseRequest) (*dto.IngestCaseResponse, error)
}

type ingestService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewIngestService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IIngestService {
	return &ingestService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (s *ingestService) IngestCase(ctx context.Context, req *dto.IngestCaseRequest) (*dto.IngestCaseResponse, error) {
	caseID := fmt.Sprintf("case_%s", uuid.New().String())

	record := ingest.ProcessRecord(ingest.RawRecord{
		Question:  req.Question,
		Reasoning: req.Reasoning,
		Response:  req.Response,
	}, 0)

	payload := events.PublishEmbedCaseMessage{
		CaseID:          caseID,
		Text:            record.Text,
		FullQuestion:    record.FullQuestion,
		FullReasoning:   record.FullReasoning,
		FullResponse:    record.FullResponse,
		MedicalKeywords: record.MedicalKeywords,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal ingest payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		return nil, fmt.Errorf("publish ingest event: %w", err)
	}

	s.logger.Info("ingest", "Case queued for embedding", map[string]interface{}{
		"case_id": caseID,
	})

	return &dto.IngestCaseResponse{
		CaseID: caseID,
		Status: "queued",
	}, nil
}
