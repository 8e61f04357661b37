package unitofwork

import (
	"context"

	"genai-chatbot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatTurnRepository() contract.ChatTurnRepository
	GenerationLogRepository() contract.GenerationLogRepository
}
