package contract

import (
	"context"

	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/repository/specification"
)

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatTurn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	FindDistinctSessionIds(ctx context.Context) ([]string, error)
}
