package mapper

import (
	"encoding/json"

	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Turn Mappers

func (m *ChatMapper) ChatTurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}

	return &entity.ChatTurn{
		Id:              t.Id,
		SessionId:       t.SessionId,
		UserMessage:     t.UserMessage,
		BotResponse:     t.BotResponse,
		DocumentContext: t.DocumentContext,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *ChatMapper) ChatTurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}

	return &model.ChatTurn{
		Id:              t.Id,
		SessionId:       t.SessionId,
		UserMessage:     t.UserMessage,
		BotResponse:     t.BotResponse,
		DocumentContext: t.DocumentContext,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *ChatMapper) ChatTurnsToEntities(models []*model.ChatTurn) []*entity.ChatTurn {
	entities := make([]*entity.ChatTurn, len(models))
	for i, t := range models {
		entities[i] = m.ChatTurnToEntity(t)
	}
	return entities
}

// Generation Log Mappers

func (m *ChatMapper) GenerationLogToModel(l *entity.GenerationLog) (*model.GenerationLog, error) {
	if l == nil {
		return nil, nil
	}

	var metadata datatypes.JSON
	if l.Metadata != nil {
		raw, err := json.Marshal(l.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = datatypes.JSON(raw)
	}

	return &model.GenerationLog{
		Id:                  l.Id,
		TurnId:              l.TurnId,
		SessionId:           l.SessionId,
		Provider:            l.Provider,
		Model:               l.Model,
		DurationMs:          l.DurationMs,
		DocumentContextUsed: l.DocumentContextUsed,
		Metadata:            metadata,
		CreatedAt:           l.CreatedAt,
	}, nil
}

func (m *ChatMapper) GenerationLogToEntity(l *model.GenerationLog) *entity.GenerationLog {
	if l == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(l.Metadata) > 0 {
		// Unreadable metadata is dropped rather than failing the read
		_ = json.Unmarshal(l.Metadata, &metadata)
	}

	return &entity.GenerationLog{
		Id:                  l.Id,
		TurnId:              l.TurnId,
		SessionId:           l.SessionId,
		Provider:            l.Provider,
		Model:               l.Model,
		DurationMs:          l.DurationMs,
		DocumentContextUsed: l.DocumentContextUsed,
		Metadata:            metadata,
		CreatedAt:           l.CreatedAt,
	}
}
