package contract

import (
	"context"

	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/repository/specification"
)

type GenerationLogRepository interface {
	Create(ctx context.Context, log *entity.GenerationLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationLog, error)
}
