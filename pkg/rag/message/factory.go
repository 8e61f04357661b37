package message

import (
	"time"

	"genai-chatbot-be/internal/entity"

	"github.com/google/uuid"
)

// Factory builds the turns handed to the context store.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateTurn pairs a question with its answer. documentContext is nil when
// the turn reused an earlier document or had none.
func (f *Factory) CreateTurn(sessionID, userMessage, botResponse string, documentContext *string, now time.Time) *entity.ChatTurn {
	return &entity.ChatTurn{
		Id:              uuid.New(),
		SessionId:       sessionID,
		UserMessage:     userMessage,
		BotResponse:     botResponse,
		DocumentContext: documentContext,
		CreatedAt:       now.UTC(),
	}
}
