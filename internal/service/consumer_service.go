package service

import (
	"context"
	"encoding/json"
	"time"

	"genai-chatbot-be/internal/constant"
	"genai-chatbot-be/internal/dto"
	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/pkg/logger"
	"genai-chatbot-be/internal/repository/unitofwork"
	"genai-chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const telemetryModule = "TELEMETRY"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventPublisher forwards domain events to the external bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// consumerService records every turn-recorded message as telemetry: a line in
// the exchange log, a generation_logs row when a database is configured, and
// an event on NATS when connected. Telemetry failures never nack.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	exchangeLogger logger.ILogger
	logger         logger.ILogger
}

// NewConsumerService builds the telemetry consumer. uowFactory and
// eventPublisher are optional.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher EventPublisher,
	exchangeLogger logger.ILogger,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		exchangeLogger: exchangeLogger,
		logger:         sysLogger,
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
	defer msg.Ack()

	var payload dto.TurnRecordedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(telemetryModule, "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	details := map[string]interface{}{
		"turn_id":               payload.TurnId.String(),
		"session_id":            payload.SessionId,
		"provider":              payload.Provider,
		"model":                 payload.Model,
		"duration_ms":           payload.DurationMs,
		"document_context_used": payload.DocumentContextUsed,
		"metadata":              payload.Metadata,
	}
	cs.exchangeLogger.Info(telemetryModule, "Turn recorded", details)

	if cs.uowFactory != nil {
		uow := cs.uowFactory.NewUnitOfWork(ctx)
		err := uow.GenerationLogRepository().Create(ctx, &entity.GenerationLog{
			Id:                  uuid.New(),
			TurnId:              payload.TurnId,
			SessionId:           payload.SessionId,
			Provider:            payload.Provider,
			Model:               payload.Model,
			DurationMs:          payload.DurationMs,
			DocumentContextUsed: payload.DocumentContextUsed,
			Metadata:            payload.Metadata,
			CreatedAt:           time.Now().UTC(),
		})
		if err != nil {
			cs.logger.Warn(telemetryModule, "Failed to save generation log", map[string]interface{}{
				"turn_id": payload.TurnId.String(),
				"error":   err.Error(),
			})
		}
	}

	if cs.eventPublisher != nil {
		event := events.BaseEvent{
			Type:       constant.EventTurnRecorded,
			Data:       details,
			OccurredAt: payload.OccurredAt,
		}
		if err := cs.eventPublisher.Publish(ctx, event); err != nil {
			cs.logger.Warn(telemetryModule, "Failed to forward event", map[string]interface{}{
				"turn_id": payload.TurnId.String(),
				"error":   err.Error(),
			})
		}
	}
}
