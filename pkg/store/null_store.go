package store

import (
	"context"

	"genai-chatbot-be/internal/entity"

	"github.com/google/uuid"
)

const DriverNull = "null"

// NullStore stands in when no backend could be reached at startup.
// Every operation fails with ErrUnavailable so callers apply their degrade policy.
type NullStore struct{}

var _ ContextStore = NullStore{}

func NewNullStore() NullStore {
	return NullStore{}
}

func (NullStore) Name() string {
	return DriverNull
}

func (NullStore) AppendTurn(ctx context.Context, turn *entity.ChatTurn) (uuid.UUID, error) {
	return uuid.Nil, wrap(DriverNull, "append turn", ErrUnavailable)
}

func (NullStore) GetTurns(ctx context.Context, sessionID string) ([]*entity.ChatTurn, error) {
	return nil, wrap(DriverNull, "get turns", ErrUnavailable)
}

func (NullStore) GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]*entity.ChatTurn, error) {
	return nil, wrap(DriverNull, "get recent turns", ErrUnavailable)
}

func (NullStore) GetLatestDocumentContext(ctx context.Context, sessionID string) (*string, error) {
	return nil, wrap(DriverNull, "get latest document context", ErrUnavailable)
}

func (NullStore) ListSessionIDs(ctx context.Context) ([]string, error) {
	return nil, wrap(DriverNull, "list sessions", ErrUnavailable)
}

func (NullStore) Close() error {
	return nil
}
