package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"reasonmed-be/internal/pkg/logger"
	"reasonmed-be/pkg/embedding"
	"reasonmed-be/pkg/events"
	"reasonmed-be/pkg/vectorstore"
)

// IConsumerService drains the case-embedding topic: each message gets
// embedded and upserted into the vector store.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	embedder  *embedding.Service
	store     vectorstore.Store
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embedder *embedding.Service,
	store vectorstore.Store,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		embedder:  embedder,
		store:     store,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload events.PublishEmbedCaseMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("consumer", "Processing case embedding", map[string]interface{}{
		"case_id": payload.CaseID,
	})

	vector, err := cs.embedder.Embed(ctx, payload.Text)
	if err != nil {
		cs.logger.Error("consumer", "Failed to embed case", map[string]interface{}{
			"case_id": payload.CaseID,
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	err = cs.store.Upsert(ctx,
		[]string{payload.CaseID},
		[]string{payload.Text},
		[]map[string]interface{}{payload.Metadata()},
		[][]float32{vector},
	)
	if err != nil {
		cs.logger.Error("consumer", "Failed to store case", map[string]interface{}{
			"case_id": payload.CaseID,
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("consumer", "Case embedded and stored", map[string]interface{}{
		"case_id": payload.CaseID,
	})
	msg.Ack()
}
