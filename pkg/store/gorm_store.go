package store

import (
	"context"
	"time"

	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/repository/specification"
	"genai-chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	DriverGorm = "gorm"

	turnTimeColumn = "timestamp"
)

// GormStore keeps turns in the chats table through the repository layer.
type GormStore struct {
	uowFactory unitofwork.RepositoryFactory
	closeFn    func() error
}

var _ ContextStore = (*GormStore)(nil)

func NewGormStore(uowFactory unitofwork.RepositoryFactory, closeFn func() error) *GormStore {
	return &GormStore{
		uowFactory: uowFactory,
		closeFn:    closeFn,
	}
}

func (s *GormStore) Name() string {
	return DriverGorm
}

func (s *GormStore) AppendTurn(ctx context.Context, turn *entity.ChatTurn) (uuid.UUID, error) {
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatTurnRepository().Create(ctx, turn); err != nil {
		return uuid.Nil, wrap(DriverGorm, "append turn", err)
	}
	return turn.Id, nil
}

func (s *GormStore) GetTurns(ctx context.Context, sessionID string) ([]*entity.ChatTurn, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: turnTimeColumn, Desc: false},
	)
	if err != nil {
		return nil, wrap(DriverGorm, "get turns", err)
	}
	return turns, nil
}

func (s *GormStore) GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]*entity.ChatTurn, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: turnTimeColumn, Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, wrap(DriverGorm, "get recent turns", err)
	}

	// Newest first from the query; callers expect chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (s *GormStore) GetLatestDocumentContext(ctx context.Context, sessionID string) (*string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	turn, err := uow.ChatTurnRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.WithDocumentContext{},
		specification.OrderBy{Field: turnTimeColumn, Desc: true},
	)
	if err != nil {
		return nil, wrap(DriverGorm, "get latest document context", err)
	}
	if turn == nil {
		return nil, nil
	}
	return turn.DocumentContext, nil
}

func (s *GormStore) ListSessionIDs(ctx context.Context) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ids, err := uow.ChatTurnRepository().FindDistinctSessionIds(ctx)
	if err != nil {
		return nil, wrap(DriverGorm, "list sessions", err)
	}
	return ids, nil
}

func (s *GormStore) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
